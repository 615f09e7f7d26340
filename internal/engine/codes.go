package engine

// Outcome codes, grouped by command.
const (
	CodeRegisterConsumerSuccess  = "REGISTER_CONSUMER_SUCCESS"
	CodeRegisterOrganiserSuccess = "REGISTER_ORGANISER_SUCCESS"
	CodeRegisterFieldsBlank      = "USER_REGISTER_FIELDS_CANNOT_BE_BLANK"
	CodeRegisterEmailTaken       = "USER_REGISTER_EMAIL_ALREADY_REGISTERED"
	CodeRegisterOrgTaken         = "USER_REGISTER_ORG_ALREADY_REGISTERED"
	CodeRegisterPasswordRejected = "USER_REGISTER_PASSWORD_REJECTED"

	CodeLoginSuccess            = "USER_LOGIN_SUCCESS"
	CodeLoginEmailNotRegistered = "USER_LOGIN_EMAIL_NOT_REGISTERED"
	CodeLoginWrongPassword      = "USER_LOGIN_WRONG_PASSWORD"

	CodeLogoutSuccess     = "USER_LOGOUT_SUCCESS"
	CodeLogoutNotLoggedIn = "USER_LOGOUT_NOT_LOGGED_IN"

	CodeUpdateProfileSuccess          = "USER_UPDATE_PROFILE_SUCCESS"
	CodeUpdateProfileFieldsBlank      = "USER_UPDATE_PROFILE_FIELDS_CANNOT_BE_BLANK"
	CodeUpdateProfileNotLoggedIn      = "USER_UPDATE_PROFILE_NOT_LOGGED_IN"
	CodeUpdateProfileWrongPassword    = "USER_UPDATE_PROFILE_WRONG_PASSWORD"
	CodeUpdateProfileEmailInUse       = "USER_UPDATE_PROFILE_EMAIL_ALREADY_IN_USE"
	CodeUpdateProfileNotConsumer      = "USER_UPDATE_PROFILE_NOT_CONSUMER"
	CodeUpdateProfileNotOrganiser     = "USER_UPDATE_PROFILE_NOT_ORGANISER"
	CodeUpdateProfileOrgTaken         = "USER_UPDATE_PROFILE_ORG_ALREADY_REGISTERED"
	CodeUpdateProfilePasswordRejected = "USER_UPDATE_PROFILE_PASSWORD_REJECTED"

	CodeCreateEventNotLoggedIn       = "CREATE_EVENT_USER_NOT_LOGGED_IN"
	CodeCreateEventNotOrganiser      = "CREATE_EVENT_USER_NOT_ORGANISER"
	CodeCreateEventTitleBlank        = "CREATE_EVENT_TITLE_CANNOT_BE_BLANK"
	CodeCreateEventInvalidCategory   = "CREATE_EVENT_INVALID_CATEGORY"
	CodeCreateEventInvalidMaxTickets = "CREATE_EVENT_INVALID_MAX_TICKETS"
	CodeCreateEventNegativePrice     = "CREATE_EVENT_NEGATIVE_PRICE"
	CodeCreateNonTicketedSuccess     = "CREATE_NON_TICKETED_EVENT_SUCCESS"
	CodeCreateTicketedSuccess        = "CREATE_TICKETED_EVENT_SUCCESS"
	CodeCreateEventSponsorship       = "CREATE_EVENT_REQUESTED_SPONSORSHIP"

	CodeAddPerformanceSuccess           = "ADD_PERFORMANCE_SUCCESS"
	CodeAddPerformanceStartAfterEnd     = "ADD_PERFORMANCE_START_AFTER_END"
	CodeAddPerformanceCapacityBelowOne  = "ADD_PERFORMANCE_CAPACITY_LESS_THAN_1"
	CodeAddPerformanceVenueSizeBelowOne = "ADD_PERFORMANCE_VENUE_SIZE_LESS_THAN_1"
	CodeAddPerformanceNotLoggedIn       = "ADD_PERFORMANCE_USER_NOT_LOGGED_IN"
	CodeAddPerformanceNotOrganiser      = "ADD_PERFORMANCE_USER_NOT_ORGANISER"
	CodeAddPerformanceEventNotFound     = "ADD_PERFORMANCE_EVENT_NOT_FOUND"
	CodeAddPerformanceNotEventOrganiser = "ADD_PERFORMANCE_USER_NOT_EVENT_ORGANISER"
	CodeAddPerformanceTitleClash        = "ADD_PERFORMANCE_EVENTS_WITH_SAME_TITLE_CLASH"

	CodeBookEventSuccess             = "BOOK_EVENT_SUCCESS"
	CodeBookEventNotConsumer         = "BOOK_EVENT_USER_NOT_CONSUMER"
	CodeBookEventEventNotFound       = "BOOK_EVENT_EVENT_NOT_FOUND"
	CodeBookEventNotTicketed         = "BOOK_EVENT_NOT_A_TICKETED_EVENT"
	CodeBookEventNotActive           = "BOOK_EVENT_EVENT_NOT_ACTIVE"
	CodeBookEventInvalidNumTickets   = "BOOK_EVENT_INVALID_NUM_TICKETS"
	CodeBookEventPerformanceNotFound = "BOOK_EVENT_PERFORMANCE_NOT_FOUND"
	CodeBookEventAlreadyOver         = "BOOK_EVENT_ALREADY_OVER"
	CodeBookEventNotEnoughTickets    = "BOOK_EVENT_NOT_ENOUGH_TICKETS_LEFT"
	CodeBookEventPaymentFailed       = "BOOK_EVENT_PAYMENT_FAILED"

	CodeCancelBookingSuccess      = "CANCEL_BOOKING_SUCCESS"
	CodeCancelBookingNotConsumer  = "CANCEL_BOOKING_USER_NOT_CONSUMER"
	CodeCancelBookingNotFound     = "CANCEL_BOOKING_BOOKING_NOT_FOUND"
	CodeCancelBookingNotBooker    = "CANCEL_BOOKING_USER_IS_NOT_BOOKER"
	CodeCancelBookingNotActive    = "CANCEL_BOOKING_BOOKING_NOT_ACTIVE"
	CodeCancelBookingWithin24h    = "CANCEL_BOOKING_NO_CANCELLATIONS_WITHIN_24H"
	CodeCancelBookingRefundFailed = "CANCEL_BOOKING_REFUND_FAILED"

	CodeCancelEventSuccess                 = "CANCEL_EVENT_SUCCESS"
	CodeCancelEventMessageBlank            = "CANCEL_EVENT_MESSAGE_MUST_NOT_BE_BLANK"
	CodeCancelEventNotOrganiser            = "CANCEL_EVENT_USER_NOT_ORGANISER"
	CodeCancelEventEventNotFound           = "CANCEL_EVENT_EVENT_NOT_FOUND"
	CodeCancelEventNotActive               = "CANCEL_EVENT_NOT_ACTIVE"
	CodeCancelEventNotEventOrganiser       = "CANCEL_EVENT_USER_NOT_EVENT_ORGANISER"
	CodeCancelEventPerformanceStarted      = "CANCEL_EVENT_PERFORMANCE_ALREADY_STARTED"
	CodeCancelEventSponsorshipRefundOK     = "CANCEL_EVENT_REFUND_SPONSORSHIP_SUCCESS"
	CodeCancelEventSponsorshipRefundFailed = "CANCEL_EVENT_REFUND_SPONSORSHIP_FAILED"
	CodeCancelEventBookingRefundOK         = "CANCEL_EVENT_REFUND_BOOKING_SUCCESS"
	CodeCancelEventBookingRefundFailed     = "CANCEL_EVENT_REFUND_BOOKING_ERROR"

	CodeRespondSponsorshipApprove          = "RESPOND_SPONSORSHIP_APPROVE"
	CodeRespondSponsorshipReject           = "RESPOND_SPONSORSHIP_REJECT"
	CodeRespondSponsorshipNotLoggedIn      = "RESPOND_SPONSORSHIP_USER_NOT_LOGGED_IN"
	CodeRespondSponsorshipNotGovernment    = "RESPOND_SPONSORSHIP_USER_NOT_GOVERNMENT_REPRESENTATIVE"
	CodeRespondSponsorshipInvalidPercent   = "RESPOND_SPONSORSHIP_INVALID_PERCENTAGE"
	CodeRespondSponsorshipNotFound         = "RESPOND_SPONSORSHIP_REQUEST_NOT_FOUND"
	CodeRespondSponsorshipNotPending       = "RESPOND_SPONSORSHIP_REQUEST_NOT_PENDING"
	CodeRespondSponsorshipPaymentSucceeded = "RESPOND_SPONSORSHIP_PAYMENT_SUCCESS"
	CodeRespondSponsorshipPaymentFailed    = "RESPOND_SPONSORSHIP_PAYMENT_FAILED"

	CodeListEventsSuccess     = "LIST_USER_EVENTS_SUCCESS"
	CodeListEventsNotLoggedIn = "LIST_USER_EVENTS_NOT_LOGGED_IN"

	CodeListConsumerBookingsSuccess     = "LIST_CONSUMER_BOOKINGS_SUCCESS"
	CodeListConsumerBookingsNotLoggedIn = "LIST_CONSUMER_BOOKINGS_NOT_LOGGED_IN"
	CodeListConsumerBookingsNotConsumer = "LIST_CONSUMER_BOOKINGS_USER_NOT_CONSUMER"

	CodeListEventBookingsSuccess       = "LIST_EVENT_BOOKINGS_SUCCESS"
	CodeListEventBookingsNotLoggedIn   = "LIST_EVENT_BOOKINGS_USER_NOT_LOGGED_IN"
	CodeListEventBookingsEventNotFound = "LIST_EVENT_BOOKINGS_EVENT_NOT_FOUND"
	CodeListEventBookingsNotTicketed   = "LIST_EVENT_BOOKINGS_EVENT_NOT_TICKETED"
	CodeListEventBookingsNotOrgNorGov  = "LIST_EVENT_BOOKINGS_USER_NOT_ORGANISER_NOR_GOV"

	CodeListSponsorshipsSuccess       = "LIST_SPONSORSHIP_REQUESTS_SUCCESS"
	CodeListSponsorshipsNotLoggedIn   = "LIST_SPONSORSHIP_REQUESTS_NOT_LOGGED_IN"
	CodeListSponsorshipsNotGovernment = "LIST_SPONSORSHIP_REQUESTS_NOT_GOVERNMENT_REPRESENTATIVE"

	CodeGovernmentReportSuccess           = "GOVERNMENT_REPORT_SUCCESS"
	CodeGovernmentReportNotGovernment     = "GOVERNMENT_REPORT_USER_NOT_GOVERNMENT_REPRESENTATIVE"
	CodeGovernmentReportOrganiserNotFound = "GOVERNMENT_REPORT_ORGANISER_NOT_FOUND"

	CodeAvailableTicketsSuccess             = "AVAILABLE_TICKETS_SUCCESS"
	CodeAvailableTicketsEventNotFound       = "AVAILABLE_TICKETS_EVENT_NOT_FOUND"
	CodeAvailableTicketsNotTicketed         = "AVAILABLE_TICKETS_NOT_A_TICKETED_EVENT"
	CodeAvailableTicketsPerformanceNotFound = "AVAILABLE_TICKETS_PERFORMANCE_NOT_FOUND"
)
