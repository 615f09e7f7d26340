package engine

import (
	"context"
	"slices"

	"github.com/robertarktes/sponsored-events/internal/domain"
)

type RegisterConsumer struct {
	base
	Name           string
	Email          string
	Phone          string
	Password       string
	PaymentAccount string

	result *domain.Consumer
}

func (*RegisterConsumer) Source() string { return "RegisterConsumer" }

func (c *RegisterConsumer) Result() *domain.Consumer { return c.result }

func (c *RegisterConsumer) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeRegisterFieldsBlank, func() bool {
			return !blank(c.Name, c.Email, c.Phone, c.Password, c.PaymentAccount)
		}},
		{CodeRegisterEmailTaken, func() bool {
			_, taken := env.Store.User(c.Email)
			return !taken
		}},
	}, func() step[*domain.Consumer] {
		acct, err := domain.NewAccount(c.Email, c.Password, c.PaymentAccount, env.PasswordCost)
		if err != nil {
			env.Logger.WithField("email", c.Email).Error("hash password: ", err)
			return fail[*domain.Consumer](CodeRegisterPasswordRejected, nil)
		}
		consumer := &domain.Consumer{
			Account:     acct,
			Name:        c.Name,
			Phone:       c.Phone,
			Preferences: domain.DefaultPreferences(),
		}
		env.Store.AddUser(consumer)
		env.Session.User = consumer
		return done(consumer, CodeRegisterConsumerSuccess, map[string]any{"email": c.Email})
	})
}

type RegisterOrganiser struct {
	base
	OrgName        string
	OrgAddress     string
	PaymentAccount string
	MainRepName    string
	Email          string
	Password       string
	OtherRepNames  []string
	OtherRepEmails []string

	result *domain.Organiser
}

func (*RegisterOrganiser) Source() string { return "RegisterOrganiser" }

func (c *RegisterOrganiser) Result() *domain.Organiser { return c.result }

func (c *RegisterOrganiser) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeRegisterFieldsBlank, func() bool {
			return !blank(c.OrgName, c.OrgAddress, c.PaymentAccount, c.MainRepName, c.Email, c.Password)
		}},
		{CodeRegisterEmailTaken, func() bool {
			_, taken := env.Store.User(c.Email)
			return !taken
		}},
		{CodeRegisterOrgTaken, func() bool {
			return findOrganiser(env, c.OrgName, c.OrgAddress, nil) == nil
		}},
	}, func() step[*domain.Organiser] {
		acct, err := domain.NewAccount(c.Email, c.Password, c.PaymentAccount, env.PasswordCost)
		if err != nil {
			env.Logger.WithField("email", c.Email).Error("hash password: ", err)
			return fail[*domain.Organiser](CodeRegisterPasswordRejected, nil)
		}
		org := &domain.Organiser{
			Account:        acct,
			OrgName:        c.OrgName,
			OrgAddress:     c.OrgAddress,
			MainRepName:    c.MainRepName,
			OtherRepNames:  slices.Clone(c.OtherRepNames),
			OtherRepEmails: slices.Clone(c.OtherRepEmails),
			Inventory:      env.Inventory(c.OrgName, c.OrgAddress),
		}
		env.Store.AddUser(org)
		env.Session.User = org
		return done(org, CodeRegisterOrganiserSuccess, map[string]any{
			"email":    c.Email,
			"org_name": c.OrgName,
		})
	})
}

// findOrganiser returns the organiser registered under (name, address),
// ignoring except.
func findOrganiser(env *Env, name, address string, except *domain.Organiser) *domain.Organiser {
	for _, u := range env.Store.Users() {
		o, ok := u.(*domain.Organiser)
		if !ok || o == except {
			continue
		}
		if o.OrgName == name && o.OrgAddress == address {
			return o
		}
	}
	return nil
}

type Login struct {
	base
	Email    string
	Password string

	result domain.User
}

func (*Login) Source() string { return "Login" }

func (c *Login) Result() domain.User { return c.result }

func (c *Login) Execute(ctx context.Context, env *Env) {
	var user domain.User
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeLoginEmailNotRegistered, func() bool {
			var ok bool
			user, ok = env.Store.User(c.Email)
			return ok
		}},
		{CodeLoginWrongPassword, func() bool {
			return user.Acct().CheckPassword(c.Password)
		}},
	}, func() step[domain.User] {
		env.Session.User = user
		return done(user, CodeLoginSuccess, map[string]any{"email": c.Email})
	})
}

type Logout struct {
	base
}

func (*Logout) Source() string { return "Logout" }

func (c *Logout) Execute(ctx context.Context, env *Env) {
	run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeLogoutNotLoggedIn, func() bool { return env.actor() != nil }},
	}, func() step[struct{}] {
		email := env.actor().Acct().Email
		env.Session.User = nil
		return done(struct{}{}, CodeLogoutSuccess, map[string]any{"email": email})
	})
}

// profileGuards are shared by both profile updates.
func profileGuards(env *Env, oldPassword, newEmail string) []Guard {
	return []Guard{
		{CodeUpdateProfileNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeUpdateProfileWrongPassword, func() bool {
			return env.actor().Acct().CheckPassword(oldPassword)
		}},
		{CodeUpdateProfileEmailInUse, func() bool {
			other, taken := env.Store.User(newEmail)
			return !taken || other == env.actor()
		}},
	}
}

type UpdateConsumerProfile struct {
	base
	OldPassword       string
	NewName           string
	NewEmail          string
	NewPhone          string
	NewPassword       string
	NewPaymentAccount string
	NewPreferences    domain.Preferences

	result bool
}

func (*UpdateConsumerProfile) Source() string { return "UpdateConsumerProfile" }

func (c *UpdateConsumerProfile) Result() bool { return c.result }

func (c *UpdateConsumerProfile) Execute(ctx context.Context, env *Env) {
	guards := []Guard{
		{CodeUpdateProfileFieldsBlank, func() bool {
			return !blank(c.NewName, c.NewEmail, c.NewPhone, c.NewPassword, c.NewPaymentAccount)
		}},
	}
	guards = append(guards, profileGuards(env, c.OldPassword, c.NewEmail)...)
	guards = append(guards, Guard{CodeUpdateProfileNotConsumer, func() bool {
		_, ok := env.actor().(*domain.Consumer)
		return ok
	}})

	c.result = run(ctx, env, &c.base, c.Source(), guards, func() step[bool] {
		consumer := env.actor().(*domain.Consumer)
		var acct domain.Account
		if err := acct.SetPassword(c.NewPassword, env.PasswordCost); err != nil {
			env.Logger.WithField("email", consumer.Email).Error("hash password: ", err)
			return fail[bool](CodeUpdateProfilePasswordRejected, nil)
		}
		oldEmail := consumer.Email
		consumer.Name = c.NewName
		consumer.Email = c.NewEmail
		consumer.Phone = c.NewPhone
		consumer.PasswordHash = acct.PasswordHash
		consumer.PaymentAccount = c.NewPaymentAccount
		consumer.Preferences = c.NewPreferences
		env.Store.Rekey(consumer, oldEmail)
		return done(true, CodeUpdateProfileSuccess, map[string]any{"email": consumer.Email})
	})
}

type UpdateOrganiserProfile struct {
	base
	OldPassword       string
	NewOrgName        string
	NewOrgAddress     string
	NewPaymentAccount string
	NewMainRepName    string
	NewEmail          string
	NewPassword       string
	NewOtherRepNames  []string
	NewOtherRepEmails []string

	result bool
}

func (*UpdateOrganiserProfile) Source() string { return "UpdateOrganiserProfile" }

func (c *UpdateOrganiserProfile) Result() bool { return c.result }

func (c *UpdateOrganiserProfile) Execute(ctx context.Context, env *Env) {
	guards := []Guard{
		{CodeUpdateProfileFieldsBlank, func() bool {
			return !blank(c.NewOrgName, c.NewOrgAddress, c.NewPaymentAccount, c.NewMainRepName, c.NewEmail, c.NewPassword)
		}},
	}
	guards = append(guards, profileGuards(env, c.OldPassword, c.NewEmail)...)
	guards = append(guards,
		Guard{CodeUpdateProfileNotOrganiser, func() bool {
			_, ok := env.actor().(*domain.Organiser)
			return ok
		}},
		Guard{CodeUpdateProfileOrgTaken, func() bool {
			self := env.actor().(*domain.Organiser)
			return findOrganiser(env, c.NewOrgName, c.NewOrgAddress, self) == nil
		}},
	)

	c.result = run(ctx, env, &c.base, c.Source(), guards, func() step[bool] {
		org := env.actor().(*domain.Organiser)
		var acct domain.Account
		if err := acct.SetPassword(c.NewPassword, env.PasswordCost); err != nil {
			env.Logger.WithField("email", org.Email).Error("hash password: ", err)
			return fail[bool](CodeUpdateProfilePasswordRejected, nil)
		}
		oldEmail := org.Email
		org.OrgName = c.NewOrgName
		org.OrgAddress = c.NewOrgAddress
		org.PaymentAccount = c.NewPaymentAccount
		org.MainRepName = c.NewMainRepName
		org.Email = c.NewEmail
		org.PasswordHash = acct.PasswordHash
		org.OtherRepNames = slices.Clone(c.NewOtherRepNames)
		org.OtherRepEmails = slices.Clone(c.NewOtherRepEmails)
		env.Store.Rekey(org, oldEmail)
		return done(true, CodeUpdateProfileSuccess, map[string]any{"email": org.Email})
	})
}
