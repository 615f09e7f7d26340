package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Codes produced by the HTTP layer itself.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidSession = "INVALID_SESSION_TOKEN"
	CodeRateLimited    = "RATE_LIMITED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotReady       = "NOT_READY"

	CodeIdempotencyKeyReused = "IDEMPOTENCY_KEY_REUSED"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// statusRules map fragments of rejection codes to HTTP statuses. The first
// matching rule wins.
var statusRules = []struct {
	fragment string
	status   int
}{
	{"NOT_LOGGED_IN", http.StatusUnauthorized},
	{"WRONG_PASSWORD", http.StatusUnauthorized},
	{"EMAIL_NOT_REGISTERED", http.StatusUnauthorized},
	{"NOT_FOUND", http.StatusNotFound},
	{"_USER_NOT_", http.StatusForbidden},
	{"_NOT_CONSUMER", http.StatusForbidden},
	{"_NOT_ORGANISER", http.StatusForbidden},
	{"_NOT_GOVERNMENT", http.StatusForbidden},
	{"IS_NOT_BOOKER", http.StatusForbidden},
	{"PAYMENT_FAILED", http.StatusPaymentRequired},
	{"REFUND_FAILED", http.StatusBadGateway},
	{"REFUND_SPONSORSHIP_FAILED", http.StatusBadGateway},
	{"ALREADY", http.StatusConflict},
	{"IN_USE", http.StatusConflict},
	{"CLASH", http.StatusConflict},
	{"NOT_ACTIVE", http.StatusConflict},
	{"NOT_PENDING", http.StatusConflict},
	{"NOT_ENOUGH", http.StatusConflict},
	{"WITHIN_24H", http.StatusConflict},
}

// statusFor maps a rejection code to the status it is reported with.
func statusFor(code string) int {
	for _, rule := range statusRules {
		if strings.Contains(code, rule.fragment) {
			return rule.status
		}
	}
	return http.StatusUnprocessableEntity
}

// reject reports a command rejection using its outcome code.
func reject(w http.ResponseWriter, code string) {
	msg := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	writeError(w, statusFor(code), msg, code)
}
