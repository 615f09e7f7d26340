package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/engine"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	govEmail    = "gov@example.com"
	govPassword = "gov-password"
	govAccount  = "government@example.com"
)

var epoch = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

// gateway wraps a real ledger so tests can force individual calls to fail.
type gateway struct {
	*ledger.Ledger
	failPay    func(payer string) bool
	failRefund func(payer string) bool
}

func (g *gateway) Pay(ctx context.Context, payer, payee string, amount decimal.Decimal) bool {
	if g.failPay != nil && g.failPay(payer) {
		return false
	}
	return g.Ledger.Pay(ctx, payer, payee, amount)
}

func (g *gateway) Refund(ctx context.Context, payer, payee string, amount decimal.Decimal) bool {
	if g.failRefund != nil && g.failRefund(payer) {
		return false
	}
	return g.Ledger.Refund(ctx, payer, payee, amount)
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	eng      *engine.Engine
	clock    *clock.Manual
	payments *gateway
	outcomes *outcome.Log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := observability.NewDiscardLogger()
	clk := clock.NewManual(epoch)
	payments := &gateway{Ledger: ledger.New(logger, ledger.WithClock(clk))}
	outcomes := outcome.New(logger, outcome.WithClock(clk))
	eng := engine.New(engine.Deps{
		Payments:     payments,
		Outcomes:     outcomes,
		Clock:        clk,
		Logger:       logger,
		PasswordCost: bcrypt.MinCost,
	})
	if ok, err := eng.SeedGovernmentRepresentative(govEmail, govPassword, govAccount); err != nil || !ok {
		t.Fatalf("seed government representative: ok=%v err=%v", ok, err)
	}
	return &fixture{t: t, ctx: context.Background(), eng: eng, clock: clk, payments: payments, outcomes: outcomes}
}

func (f *fixture) exec(s *engine.Session, cmd engine.Command) {
	f.t.Helper()
	f.eng.Execute(f.ctx, s, cmd)
}

// expectCode fails unless cmd recorded code.
func (f *fixture) expectCode(cmd engine.Command, code string) {
	f.t.Helper()
	if cmd.Code() != code {
		f.t.Fatalf("%s: expected %s, got %s", cmd.Source(), code, cmd.Code())
	}
}

func (f *fixture) consumer(email string) (*engine.Session, *domain.Consumer) {
	f.t.Helper()
	s := &engine.Session{}
	cmd := &engine.RegisterConsumer{
		Name:           "Consumer " + email,
		Email:          email,
		Phone:          "0123",
		Password:       "secret",
		PaymentAccount: "pay-" + email,
	}
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeRegisterConsumerSuccess)
	return s, cmd.Result()
}

func (f *fixture) organiser(email, orgName string) (*engine.Session, *domain.Organiser) {
	f.t.Helper()
	s := &engine.Session{}
	cmd := &engine.RegisterOrganiser{
		OrgName:        orgName,
		OrgAddress:     "1 High Street",
		PaymentAccount: "pay-" + email,
		MainRepName:    "Rep",
		Email:          email,
		Password:       "secret",
	}
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeRegisterOrganiserSuccess)
	return s, cmd.Result()
}

func (f *fixture) government() *engine.Session {
	f.t.Helper()
	s := &engine.Session{}
	cmd := &engine.Login{Email: govEmail, Password: govPassword}
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeLoginSuccess)
	return s
}

func (f *fixture) ticketedEvent(s *engine.Session, title, price string, maxTickets int, sponsorship bool) int64 {
	f.t.Helper()
	cmd := &engine.CreateTicketedEvent{
		Title:              title,
		Category:           domain.CategoryMusic,
		Price:              decimal.RequireFromString(price),
		MaxTickets:         maxTickets,
		RequestSponsorship: sponsorship,
	}
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeCreateTicketedSuccess)
	return cmd.Result()
}

func spec(start time.Time) domain.PerformanceSpec {
	return domain.PerformanceSpec{
		Venue:         "Usher Hall",
		Start:         start,
		End:           start.Add(3 * time.Hour),
		Performers:    []string{"band"},
		CapacityLimit: 100,
		VenueSize:     200,
	}
}

func (f *fixture) performance(s *engine.Session, eventID int64, start time.Time) *domain.Performance {
	f.t.Helper()
	cmd := &engine.AddPerformance{EventID: eventID, Spec: spec(start)}
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeAddPerformanceSuccess)
	return cmd.Result()
}

func (f *fixture) book(s *engine.Session, eventID, performanceID int64, tickets int) *engine.BookEvent {
	f.t.Helper()
	cmd := &engine.BookEvent{EventID: eventID, PerformanceID: performanceID, Tickets: tickets}
	f.exec(s, cmd)
	return cmd
}

func (f *fixture) booking(id int64) *domain.Booking {
	f.t.Helper()
	b, ok := f.eng.Store().Booking(id)
	if !ok {
		f.t.Fatalf("booking %d not found", id)
	}
	return b
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }
