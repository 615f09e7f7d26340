package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/engine"
	"github.com/robertarktes/sponsored-events/internal/idempotency"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"golang.org/x/crypto/bcrypt"
)

const (
	govEmail    = "gov@example.com"
	govPassword = "gov-password"
)

var epoch = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	router *chi.Mux
	ledger *ledger.Ledger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := observability.NewDiscardLogger()
	clk := clock.NewManual(epoch)
	payments := ledger.New(logger, ledger.WithClock(clk))
	eng := engine.New(engine.Deps{
		Payments:     payments,
		Outcomes:     outcome.New(logger, outcome.WithClock(clk)),
		Clock:        clk,
		Logger:       logger,
		PasswordCost: bcrypt.MinCost,
	})
	if _, err := eng.SeedGovernmentRepresentative(govEmail, govPassword, "treasury@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sessions := NewSessions()
	h := NewHandlers(eng, sessions, nil)
	router := SetupRouter(h, sessions, logger, RouterOptions{
		Idempotency: idempotency.NewIdempotency(idempotency.NewMemory(), time.Hour),
	})
	return &testServer{t: t, router: router, ledger: payments}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode response: %v", err)
		}
	}
}

func (s *testServer) registerOrganiser(email string) string {
	s.t.Helper()
	var resp sessionResponse
	s.expect(s.do(http.MethodPost, "/v1/organisers", "", map[string]any{
		"org_name":        "Org " + email,
		"org_address":     "1 Main St",
		"payment_account": "org-" + email,
		"main_rep_name":   "Rep",
		"email":           email,
		"password":        "secret",
	}), http.StatusCreated, &resp)
	return resp.Token
}

func (s *testServer) registerConsumer(email string) string {
	s.t.Helper()
	var resp sessionResponse
	s.expect(s.do(http.MethodPost, "/v1/consumers", "", map[string]any{
		"name":            "Consumer",
		"email":           email,
		"phone":           "555-0100",
		"password":        "secret",
		"payment_account": "acct-" + email,
	}), http.StatusCreated, &resp)
	if resp.User.Kind == "" || resp.User.Email != email {
		s.t.Fatalf("unexpected user in session response: %+v", resp.User)
	}
	return resp.Token
}

func (s *testServer) ticketedEvent(token string) (int64, int64) {
	s.t.Helper()
	var created idResponse
	s.expect(s.do(http.MethodPost, "/v1/events", token, map[string]any{
		"title":       "Concert",
		"category":    "music",
		"ticketed":    true,
		"price":       "10",
		"max_tickets": 100,
	}), http.StatusCreated, &created)

	var perf performanceJSON
	s.expect(s.do(http.MethodPost, fmt.Sprintf("/v1/events/%d/performances", created.ID), token, map[string]any{
		"venue":          "Hall",
		"start":          epoch.Add(72 * time.Hour),
		"end":            epoch.Add(75 * time.Hour),
		"performers":     []string{"Band"},
		"capacity_limit": 100,
		"venue_size":     200,
	}), http.StatusCreated, &perf)
	return created.ID, perf.ID
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	org := s.registerOrganiser("org@example.com")
	eventID, perfID := s.ticketedEvent(org)
	consumer := s.registerConsumer("c@example.com")

	var booking bookingJSON
	s.expect(s.do(http.MethodPost, "/v1/bookings", consumer, map[string]any{
		"event_id":       eventID,
		"performance_id": perfID,
		"tickets":        2,
	}), http.StatusCreated, &booking)
	if booking.Tickets != 2 || booking.AmountPaid.String() != "20" || booking.Status != "ACTIVE" {
		t.Fatalf("unexpected booking: %+v", booking)
	}

	var tickets struct {
		TicketsLeft int `json:"tickets_left"`
	}
	s.expect(s.do(http.MethodGet, fmt.Sprintf("/v1/events/%d/performances/%d/tickets", eventID, perfID), consumer, nil),
		http.StatusOK, &tickets)
	if tickets.TicketsLeft != 98 {
		t.Fatalf("expected 98 tickets left, got %d", tickets.TicketsLeft)
	}

	var mine []bookingJSON
	s.expect(s.do(http.MethodGet, "/v1/bookings", consumer, nil), http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].ID != booking.ID {
		t.Fatalf("expected the booking to be listed, got %+v", mine)
	}

	var cancelled bookingJSON
	s.expect(s.do(http.MethodPost, fmt.Sprintf("/v1/bookings/%d/cancel", booking.ID), consumer, nil),
		http.StatusOK, &cancelled)
	if cancelled.Status != "CANCELLED_BY_CONSUMER" {
		t.Fatalf("expected consumer cancellation, got %s", cancelled.Status)
	}
	if n := len(s.ledger.Transactions()); n != 2 {
		t.Fatalf("expected payment and refund in the ledger, got %d transactions", n)
	}

	s.expect(s.do(http.MethodPost, fmt.Sprintf("/v1/bookings/%d/cancel", booking.ID), consumer, nil),
		http.StatusConflict, nil)
}

func TestRejections(t *testing.T) {
	s := newTestServer(t)
	org := s.registerOrganiser("org@example.com")
	eventID, perfID := s.ticketedEvent(org)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{
			name:   "booking while anonymous",
			method: http.MethodPost, path: "/v1/bookings",
			body:   map[string]any{"event_id": eventID, "performance_id": perfID, "tickets": 1},
			status: http.StatusForbidden, code: "BOOK_EVENT_USER_NOT_CONSUMER",
		},
		{
			name:   "booking as organiser",
			method: http.MethodPost, path: "/v1/bookings", token: org,
			body:   map[string]any{"event_id": eventID, "performance_id": perfID, "tickets": 1},
			status: http.StatusForbidden, code: "BOOK_EVENT_USER_NOT_CONSUMER",
		},
		{
			name:   "wrong password",
			method: http.MethodPost, path: "/v1/sessions",
			body:   map[string]any{"email": "org@example.com", "password": "nope"},
			status: http.StatusUnauthorized, code: "USER_LOGIN_WRONG_PASSWORD",
		},
		{
			name:   "unknown token",
			method: http.MethodGet, path: "/v1/bookings", token: "stale",
			status: http.StatusUnauthorized, code: CodeInvalidSession,
		},
		{
			name:   "malformed body",
			method: http.MethodPost, path: "/v1/consumers", body: "{",
			status: http.StatusBadRequest, code: CodeInvalidRequest,
		},
		{
			name:   "bad path id",
			method: http.MethodPost, path: "/v1/events/abc/cancel", token: org, body: map[string]any{},
			status: http.StatusBadRequest, code: CodeInvalidRequest,
		},
		{
			name:   "missing event",
			method: http.MethodPost, path: "/v1/events/999/cancel", token: org,
			body:   map[string]any{"message": "gone"},
			status: http.StatusNotFound, code: "CANCEL_EVENT_EVENT_NOT_FOUND",
		},
		{
			name:   "outcomes for non government",
			method: http.MethodGet, path: "/v1/outcomes", token: org,
			status: http.StatusForbidden, code: CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			s.expect(s.do(tt.method, tt.path, tt.token, tt.body), tt.status, &body)
			if body.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, body.Code)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.registerConsumer("c@example.com")

	s.expect(s.do(http.MethodDelete, "/v1/sessions", token, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/v1/bookings", token, nil), http.StatusUnauthorized, nil)
}

func TestIdempotentReplay(t *testing.T) {
	s := newTestServer(t)
	org := s.registerOrganiser("org@example.com")
	event := map[string]any{"title": "Talk", "category": "theatre"}
	key := "0123456789abcdef-create"

	var first, second idResponse
	s.expect(s.do(http.MethodPost, "/v1/events", org, event, "Idempotency-Key", key), http.StatusCreated, &first)
	rec := s.do(http.MethodPost, "/v1/events", org, event, "Idempotency-Key", key)
	s.expect(rec, http.StatusCreated, &second)

	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected the second response to be replayed")
	}
	if first.ID != second.ID {
		t.Fatalf("replay returned a different event: %d vs %d", first.ID, second.ID)
	}

	var events []eventJSON
	s.expect(s.do(http.MethodGet, "/v1/events?user_only=true", org, nil), http.StatusOK, &events)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	s.expect(s.do(http.MethodPost, "/v1/events", org, event, "Idempotency-Key", "short"), http.StatusBadRequest, nil)
}

func TestIdempotencyKeyNotSharedByAnonymousCallers(t *testing.T) {
	s := newTestServer(t)
	s.registerConsumer("alice@example.com")
	s.registerConsumer("bob@example.com")
	key := "0123456789abcdef-login"

	var alice sessionResponse
	s.expect(s.do(http.MethodPost, "/v1/sessions", "", map[string]any{
		"email": "alice@example.com", "password": "secret",
	}, "Idempotency-Key", key), http.StatusOK, &alice)

	var rejected errorBody
	rec := s.do(http.MethodPost, "/v1/sessions", "", map[string]any{
		"email": "bob@example.com", "password": "wrong",
	}, "Idempotency-Key", key)
	s.expect(rec, http.StatusUnauthorized, &rejected)
	if rejected.Code != engine.CodeLoginWrongPassword {
		t.Fatalf("expected %s, got %s", engine.CodeLoginWrongPassword, rejected.Code)
	}
	if rec.Header().Get("Idempotent-Replayed") != "" {
		t.Fatal("anonymous login must not be replayed")
	}
	if strings.Contains(rec.Body.String(), alice.Token) {
		t.Fatal("another caller's session token leaked")
	}
}

func TestIdempotencyKeyReusedWithDifferentBody(t *testing.T) {
	s := newTestServer(t)
	org := s.registerOrganiser("org@example.com")
	key := "0123456789abcdef-reuse"

	s.expect(s.do(http.MethodPost, "/v1/events", org, map[string]any{
		"title": "Talk", "category": "theatre",
	}, "Idempotency-Key", key), http.StatusCreated, nil)

	var rejected errorBody
	rec := s.do(http.MethodPost, "/v1/events", org, map[string]any{
		"title": "Other", "category": "music",
	}, "Idempotency-Key", key)
	s.expect(rec, http.StatusUnprocessableEntity, &rejected)
	if rejected.Code != CodeIdempotencyKeyReused {
		t.Fatalf("expected %s, got %s", CodeIdempotencyKeyReused, rejected.Code)
	}

	var events []eventJSON
	s.expect(s.do(http.MethodGet, "/v1/events?user_only=true", org, nil), http.StatusOK, &events)
	if len(events) != 1 || events[0].Title != "Talk" {
		t.Fatalf("expected only the first event, got %+v", events)
	}
}

func TestOutcomesForGovernment(t *testing.T) {
	s := newTestServer(t)
	s.registerConsumer("c@example.com")

	var login sessionResponse
	s.expect(s.do(http.MethodPost, "/v1/sessions", "", map[string]any{
		"email": govEmail, "password": govPassword,
	}), http.StatusOK, &login)

	var entries []outcome.Entry
	s.expect(s.do(http.MethodGet, "/v1/outcomes?source=RegisterConsumer", login.Token, nil), http.StatusOK, &entries)
	if len(entries) != 1 || entries[0].Code != engine.CodeRegisterConsumerSuccess {
		t.Fatalf("unexpected outcomes: %+v", entries)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"BOOK_EVENT_PAYMENT_FAILED":              http.StatusPaymentRequired,
		"CANCEL_EVENT_REFUND_SPONSORSHIP_FAILED": http.StatusBadGateway,
		"CANCEL_BOOKING_REFUND_FAILED":           http.StatusBadGateway,
		"REGISTER_CONSUMER_EMAIL_ALREADY_IN_USE": http.StatusConflict,
		"LIST_EVENTS_NOT_LOGGED_IN":              http.StatusUnauthorized,
		"BOOK_EVENT_INVALID_NUM_TICKETS":         http.StatusUnprocessableEntity,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t)
	s.expect(s.do(http.MethodGet, "/v1/healthz", "", nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/v1/readyz", "", nil), http.StatusOK, nil)
}
