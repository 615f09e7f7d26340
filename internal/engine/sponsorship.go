package engine

import (
	"context"

	"github.com/robertarktes/sponsored-events/internal/domain"
)

// RespondSponsorship accepts a request with Percent in [1,100] or rejects it
// with Percent 0.
type RespondSponsorship struct {
	base
	RequestID int64
	Percent   int

	result bool
}

func (*RespondSponsorship) Source() string { return "RespondSponsorship" }

func (c *RespondSponsorship) Result() bool { return c.result }

func (c *RespondSponsorship) Execute(ctx context.Context, env *Env) {
	var (
		gov *domain.GovernmentRepresentative
		req *domain.SponsorshipRequest
	)
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeRespondSponsorshipNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeRespondSponsorshipNotGovernment, func() bool {
			var ok bool
			gov, ok = env.actor().(*domain.GovernmentRepresentative)
			return ok
		}},
		{CodeRespondSponsorshipInvalidPercent, func() bool { return c.Percent >= 0 && c.Percent <= 100 }},
		{CodeRespondSponsorshipNotFound, func() bool {
			var ok bool
			req, ok = env.Store.SponsorshipRequest(c.RequestID)
			return ok
		}},
		{CodeRespondSponsorshipNotPending, func() bool { return req.IsPending() }},
	}, func() step[bool] {
		ev := req.Event
		inv := ev.Organiser.Inventory
		fields := map[string]any{"request_id": req.ID, "event_id": ev.ID}

		if c.Percent == 0 {
			if err := req.Reject(); err != nil {
				env.Logger.WithField("request_id", req.ID).Error("reject sponsorship: ", err)
			}
			inv.RecordSponsorshipRejection(ctx, ev.ID)
			return done(true, CodeRespondSponsorshipReject, fields)
		}

		amount := req.Payment(c.Percent)
		fields["amount"] = amount.String()
		fields["percent"] = c.Percent
		if !env.Payments.Pay(ctx, gov.PaymentAccount, ev.Organiser.PaymentAccount, amount) {
			return fail[bool](CodeRespondSponsorshipPaymentFailed, fields)
		}
		env.record(ctx, c.Source(), CodeRespondSponsorshipPaymentSucceeded, fields)
		if err := req.Accept(c.Percent, gov.PaymentAccount); err != nil {
			env.Logger.WithField("request_id", req.ID).Error("accept sponsorship: ", err)
		}
		inv.RecordSponsorshipAcceptance(ctx, ev.ID, c.Percent)
		return done(true, CodeRespondSponsorshipApprove, fields)
	})
}
