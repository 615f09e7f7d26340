// Package engine validates and commits marketplace commands.
//
// Every command is an ordered list of guards followed by one commit. The
// first failing guard records its outcome code and ends the command with no
// side effects. Commands run one at a time.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/inventory"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"github.com/robertarktes/sponsored-events/internal/store"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentGateway moves money between payment accounts. *ledger.Ledger
// satisfies it.
type PaymentGateway interface {
	Pay(ctx context.Context, payer, payee string, amount decimal.Decimal) bool
	Refund(ctx context.Context, payer, payee string, amount decimal.Decimal) bool
}

// Session carries the actor issuing commands. User is nil when nobody is
// logged in.
type Session struct {
	User domain.User
}

// Env is what a command sees while it executes.
type Env struct {
	Store        *store.Store
	Payments     PaymentGateway
	Inventory    inventory.Factory
	Outcomes     *outcome.Log
	Clock        clock.Clock
	Logger       observability.Logger
	PasswordCost int
	Session      *Session
}

func (env *Env) now() time.Time { return env.Clock.Now() }

func (env *Env) actor() domain.User { return env.Session.User }

func (env *Env) record(ctx context.Context, source, code string, fields map[string]any) {
	env.Outcomes.Record(ctx, source, code, fields)
}

// Command is one operation of the marketplace. Concrete commands expose
// their produced value through Result, which is the zero value unless the
// command succeeded.
type Command interface {
	Source() string
	Execute(ctx context.Context, env *Env)
	Code() string
	Succeeded() bool
	begin() bool
}

// base tracks the single execution of a command.
type base struct {
	executed bool
	code     string
	ok       bool
}

func (b *base) begin() bool {
	if b.executed {
		return false
	}
	b.executed = true
	return true
}

// Code is the outcome code recorded for the command, empty before it runs.
func (b *base) Code() string { return b.code }

func (b *base) Succeeded() bool { return b.ok }

// Guard is one named precondition.
type Guard struct {
	Code  string
	Check func() bool
}

// step is what a commit produced. A failed step still records its code but
// leaves the command without a result.
type step[T any] struct {
	value  T
	code   string
	fields map[string]any
	failed bool
}

func done[T any](value T, code string, fields map[string]any) step[T] {
	return step[T]{value: value, code: code, fields: fields}
}

func fail[T any](code string, fields map[string]any) step[T] {
	return step[T]{code: code, fields: fields, failed: true}
}

// run evaluates guards in order and, if all pass, commits.
func run[T any](ctx context.Context, env *Env, b *base, source string, guards []Guard, commit func() step[T]) T {
	var zero T
	for _, g := range guards {
		if !g.Check() {
			b.code = g.Code
			env.record(ctx, source, g.Code, nil)
			return zero
		}
	}
	s := commit()
	b.code = s.code
	env.record(ctx, source, s.code, s.fields)
	if s.failed {
		return zero
	}
	b.ok = true
	return s.value
}

type Deps struct {
	Store        *store.Store
	Payments     PaymentGateway
	Inventory    inventory.Factory
	Outcomes     *outcome.Log
	Clock        clock.Clock
	Logger       observability.Logger
	PasswordCost int
}

type Engine struct {
	mu     sync.Mutex
	env    Env
	tracer trace.Tracer
}

// New builds an engine. Payments and Outcomes are required; the remaining
// dependencies fall back to in-process defaults.
func New(d Deps) *Engine {
	if d.Store == nil {
		d.Store = store.New()
	}
	if d.Inventory == nil {
		d.Inventory = inventory.MemoryFactory()
	}
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Logger == nil {
		d.Logger = observability.NewDiscardLogger()
	}
	if d.PasswordCost == 0 {
		d.PasswordCost = domain.DefaultPasswordCost
	}
	return &Engine{
		env: Env{
			Store:        d.Store,
			Payments:     d.Payments,
			Inventory:    d.Inventory,
			Outcomes:     d.Outcomes,
			Clock:        d.Clock,
			Logger:       d.Logger,
			PasswordCost: d.PasswordCost,
		},
		tracer: otel.Tracer("engine"),
	}
}

func (e *Engine) Store() *store.Store { return e.env.Store }

func (e *Engine) Outcomes() *outcome.Log { return e.env.Outcomes }

// Execute runs cmd on behalf of s. A command runs at most once; executing
// it again only logs a warning.
func (e *Engine) Execute(ctx context.Context, s *Session, cmd Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s == nil {
		s = &Session{}
	}
	if !cmd.begin() {
		e.env.Logger.WithField("source", cmd.Source()).Warn("command already executed")
		return
	}

	ctx, span := e.tracer.Start(ctx, cmd.Source())
	defer span.End()
	start := time.Now()

	env := e.env
	env.Session = s
	cmd.Execute(ctx, &env)

	observability.CommandDuration.WithLabelValues(cmd.Source()).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("outcome.code", cmd.Code()),
		attribute.Bool("outcome.ok", cmd.Succeeded()),
		attribute.String("actor.kind", domain.Kind(s.User)),
	)
}

// Read runs fn while no command executes. Callers use it to inspect entities
// returned by a command.
func (e *Engine) Read(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// SeedGovernmentRepresentative registers the government representative
// account. It reports false if the email is already taken.
func (e *Engine) SeedGovernmentRepresentative(email, password, paymentAccount string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	acct, err := domain.NewAccount(email, password, paymentAccount, e.env.PasswordCost)
	if err != nil {
		return false, err
	}
	return e.env.Store.AddUser(&domain.GovernmentRepresentative{Account: acct}), nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
