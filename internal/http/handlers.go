package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/engine"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"github.com/shopspring/decimal"
)

// ReadyCheck reports whether the process's backing services are reachable.
type ReadyCheck func(ctx context.Context) error

type Handlers struct {
	engine   *engine.Engine
	sessions *Sessions
	ready    ReadyCheck
}

func NewHandlers(eng *engine.Engine, sessions *Sessions, ready ReadyCheck) *Handlers {
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	return &Handlers{engine: eng, sessions: sessions, ready: ready}
}

// execute runs cmd for sess and writes the rejection when it did not
// succeed.
func (h *Handlers) execute(w http.ResponseWriter, r *http.Request, sess *engine.Session, cmd engine.Command) bool {
	h.engine.Execute(r.Context(), sess, cmd)
	if cmd.Succeeded() {
		return true
	}
	loggerFrom(r.Context()).WithFields(map[string]interface{}{
		"source": cmd.Source(),
		"code":   cmd.Code(),
	}).Debug("command rejected")
	reject(w, cmd.Code())
	return false
}

// respond renders the body while no command runs.
func (h *Handlers) respond(w http.ResponseWriter, status int, render func() any) {
	var body any
	h.engine.Read(func() { body = render() })
	writeJSON(w, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), CodeInvalidRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name, CodeInvalidRequest)
		return 0, false
	}
	return id, true
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

type sessionResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

// startSession issues a token for a session a command just logged in.
func (h *Handlers) startSession(w http.ResponseWriter, status int, sess *engine.Session) {
	token := h.sessions.Issue(sess)
	h.respond(w, status, func() any {
		return sessionResponse{Token: token, User: toUser(sess.User)}
	})
}

func (h *Handlers) RegisterConsumer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Password       string `json:"password"`
		PaymentAccount string `json:"payment_account"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := &engine.Session{}
	cmd := &engine.RegisterConsumer{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		PaymentAccount: req.PaymentAccount,
	}
	if h.execute(w, r, sess, cmd) {
		h.startSession(w, http.StatusCreated, sess)
	}
}

func (h *Handlers) RegisterOrganiser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrgName        string   `json:"org_name"`
		OrgAddress     string   `json:"org_address"`
		PaymentAccount string   `json:"payment_account"`
		MainRepName    string   `json:"main_rep_name"`
		Email          string   `json:"email"`
		Password       string   `json:"password"`
		OtherRepNames  []string `json:"other_rep_names"`
		OtherRepEmails []string `json:"other_rep_emails"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := &engine.Session{}
	cmd := &engine.RegisterOrganiser{
		OrgName:        req.OrgName,
		OrgAddress:     req.OrgAddress,
		PaymentAccount: req.PaymentAccount,
		MainRepName:    req.MainRepName,
		Email:          req.Email,
		Password:       req.Password,
		OtherRepNames:  req.OtherRepNames,
		OtherRepEmails: req.OtherRepEmails,
	}
	if h.execute(w, r, sess, cmd) {
		h.startSession(w, http.StatusCreated, sess)
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := &engine.Session{}
	if h.execute(w, r, sess, &engine.Login{Email: req.Email, Password: req.Password}) {
		h.startSession(w, http.StatusOK, sess)
	}
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if h.execute(w, r, sessionFrom(r.Context()), &engine.Logout{}) {
		h.sessions.Revoke(tokenFrom(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) UpdateConsumerProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword    string           `json:"old_password"`
		Name           string           `json:"name"`
		Email          string           `json:"email"`
		Phone          string           `json:"phone"`
		Password       string           `json:"password"`
		PaymentAccount string           `json:"payment_account"`
		Preferences    *preferencesJSON `json:"preferences"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := sessionFrom(r.Context())
	cmd := &engine.UpdateConsumerProfile{
		OldPassword:       req.OldPassword,
		NewName:           req.Name,
		NewEmail:          req.Email,
		NewPhone:          req.Phone,
		NewPassword:       req.Password,
		NewPaymentAccount: req.PaymentAccount,
		NewPreferences:    req.Preferences.toDomain(),
	}
	if h.execute(w, r, sess, cmd) {
		h.respond(w, http.StatusOK, func() any { return toUser(sess.User) })
	}
}

func (h *Handlers) UpdateOrganiserProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword    string   `json:"old_password"`
		OrgName        string   `json:"org_name"`
		OrgAddress     string   `json:"org_address"`
		PaymentAccount string   `json:"payment_account"`
		MainRepName    string   `json:"main_rep_name"`
		Email          string   `json:"email"`
		Password       string   `json:"password"`
		OtherRepNames  []string `json:"other_rep_names"`
		OtherRepEmails []string `json:"other_rep_emails"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := sessionFrom(r.Context())
	cmd := &engine.UpdateOrganiserProfile{
		OldPassword:       req.OldPassword,
		NewOrgName:        req.OrgName,
		NewOrgAddress:     req.OrgAddress,
		NewPaymentAccount: req.PaymentAccount,
		NewMainRepName:    req.MainRepName,
		NewEmail:          req.Email,
		NewPassword:       req.Password,
		NewOtherRepNames:  req.OtherRepNames,
		NewOtherRepEmails: req.OtherRepEmails,
	}
	if h.execute(w, r, sess, cmd) {
		h.respond(w, http.StatusOK, func() any { return toUser(sess.User) })
	}
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title              string          `json:"title"`
		Category           domain.Category `json:"category"`
		Ticketed           bool            `json:"ticketed"`
		Price              decimal.Decimal `json:"price"`
		MaxTickets         int             `json:"max_tickets"`
		RequestSponsorship bool            `json:"request_sponsorship"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess := sessionFrom(r.Context())
	if !req.Ticketed {
		cmd := &engine.CreateNonTicketedEvent{Title: req.Title, Category: req.Category}
		if h.execute(w, r, sess, cmd) {
			writeJSON(w, http.StatusCreated, idResponse{ID: cmd.Result()})
		}
		return
	}
	cmd := &engine.CreateTicketedEvent{
		Title:              req.Title,
		Category:           req.Category,
		Price:              req.Price,
		MaxTickets:         req.MaxTickets,
		RequestSponsorship: req.RequestSponsorship,
	}
	if h.execute(w, r, sess, cmd) {
		writeJSON(w, http.StatusCreated, idResponse{ID: cmd.Result()})
	}
}

// ListEvents serves GET /v1/events. A date=YYYY-MM-DD query narrows the
// listing to events with a performance within a day of that date.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	userOnly, activeOnly := queryBool(r, "user_only"), queryBool(r, "active_only")
	sess := sessionFrom(r.Context())

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", CodeInvalidRequest)
			return
		}
		cmd := &engine.ListEventsOnDate{Date: date, UserEventsOnly: userOnly, ActiveEventsOnly: activeOnly}
		if h.execute(w, r, sess, cmd) {
			h.respond(w, http.StatusOK, func() any { return toEvents(cmd.Result()) })
		}
		return
	}
	cmd := &engine.ListEvents{UserEventsOnly: userOnly, ActiveEventsOnly: activeOnly}
	if h.execute(w, r, sess, cmd) {
		h.respond(w, http.StatusOK, func() any { return toEvents(cmd.Result()) })
	}
}

func (h *Handlers) AddPerformance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Venue            string    `json:"venue"`
		Start            time.Time `json:"start"`
		End              time.Time `json:"end"`
		Performers       []string  `json:"performers"`
		AirFiltration    bool      `json:"air_filtration"`
		SocialDistancing bool      `json:"social_distancing"`
		Outdoors         bool      `json:"outdoors"`
		CapacityLimit    int       `json:"capacity_limit"`
		VenueSize        int       `json:"venue_size"`
	}
	if !decode(w, r, &req) {
		return
	}
	cmd := &engine.AddPerformance{EventID: eventID, Spec: domain.PerformanceSpec{
		Venue:            req.Venue,
		Start:            req.Start,
		End:              req.End,
		Performers:       req.Performers,
		AirFiltration:    req.AirFiltration,
		SocialDistancing: req.SocialDistancing,
		Outdoors:         req.Outdoors,
		CapacityLimit:    req.CapacityLimit,
		VenueSize:        req.VenueSize,
	}}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusCreated, func() any { return toPerformance(cmd.Result()) })
	}
}

func (h *Handlers) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	cmd := &engine.CancelEvent{EventID: eventID, Message: req.Message}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any {
			ev, _ := h.engine.Store().Event(eventID)
			return toEvent(ev)
		})
	}
}

func (h *Handlers) ListEventBookings(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cmd := &engine.ListEventBookings{EventID: eventID}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any { return toBookings(cmd.Result()) })
	}
}

func (h *Handlers) AvailableTickets(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	performanceID, ok := pathID(w, r, "pid")
	if !ok {
		return
	}
	cmd := &engine.AvailableTickets{EventID: eventID, PerformanceID: performanceID}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		writeJSON(w, http.StatusOK, map[string]any{
			"event_id":       eventID,
			"performance_id": performanceID,
			"tickets_left":   cmd.Result(),
		})
	}
}

func (h *Handlers) BookEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID       int64 `json:"event_id"`
		PerformanceID int64 `json:"performance_id"`
		Tickets       int   `json:"tickets"`
	}
	if !decode(w, r, &req) {
		return
	}
	cmd := &engine.BookEvent{EventID: req.EventID, PerformanceID: req.PerformanceID, Tickets: req.Tickets}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusCreated, func() any {
			b, _ := h.engine.Store().Booking(cmd.Result())
			return toBooking(b)
		})
	}
}

func (h *Handlers) ListConsumerBookings(w http.ResponseWriter, r *http.Request) {
	cmd := &engine.ListConsumerBookings{}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any { return toBookings(cmd.Result()) })
	}
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cmd := &engine.CancelBooking{BookingID: bookingID}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any {
			b, _ := h.engine.Store().Booking(bookingID)
			return toBooking(b)
		})
	}
}

func (h *Handlers) ListSponsorshipRequests(w http.ResponseWriter, r *http.Request) {
	cmd := &engine.ListSponsorshipRequests{PendingOnly: queryBool(r, "pending_only")}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any { return toSponsorships(cmd.Result()) })
	}
}

func (h *Handlers) RespondSponsorship(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Percent int `json:"percent"`
	}
	if !decode(w, r, &req) {
		return
	}
	cmd := &engine.RespondSponsorship{RequestID: requestID, Percent: req.Percent}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any {
			sr, _ := h.engine.Store().SponsorshipRequest(requestID)
			return toSponsorships([]*domain.SponsorshipRequest{sr})[0]
		})
	}
}

func (h *Handlers) GovernmentReport(w http.ResponseWriter, r *http.Request) {
	cmd := &engine.GovernmentReport{OrgName: r.URL.Query().Get("org_name")}
	if h.execute(w, r, sessionFrom(r.Context()), cmd) {
		h.respond(w, http.StatusOK, func() any { return toConsumers(cmd.Result()) })
	}
}

// ListOutcomes exposes the outcome log to government representatives,
// optionally narrowed to one command source.
func (h *Handlers) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var allowed bool
	h.engine.Read(func() {
		_, allowed = sess.User.(*domain.GovernmentRepresentative)
	})
	if !allowed {
		writeError(w, http.StatusForbidden, "outcomes are restricted to government representatives", CodeForbidden)
		return
	}
	source := r.URL.Query().Get("source")
	entries := []outcome.Entry{}
	for _, e := range h.engine.Outcomes().Entries() {
		if source == "" || e.Source == source {
			entries = append(entries, e)
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.ready(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error(), CodeNotReady)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
