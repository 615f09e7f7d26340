package engine_test

import (
	"testing"

	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/engine"
)

func TestRegisterConsumer(t *testing.T) {
	f := newFixture(t)
	s, c := f.consumer("c@example.com")
	if s.User != domain.User(c) {
		t.Fatal("registration must log the consumer in")
	}
	if string(c.PasswordHash) == "secret" || !c.CheckPassword("secret") {
		t.Fatal("password must be stored hashed")
	}
	if c.Preferences != domain.DefaultPreferences() {
		t.Errorf("expected default preferences, got %+v", c.Preferences)
	}

	tests := []struct {
		name string
		cmd  *engine.RegisterConsumer
		code string
	}{
		{"blank name", &engine.RegisterConsumer{Email: "x@example.com", Phone: "1", Password: "p", PaymentAccount: "a"}, engine.CodeRegisterFieldsBlank},
		{"email taken", &engine.RegisterConsumer{Name: "n", Email: "c@example.com", Phone: "1", Password: "p", PaymentAccount: "a"}, engine.CodeRegisterEmailTaken},
		{"government email taken", &engine.RegisterConsumer{Name: "n", Email: govEmail, Phone: "1", Password: "p", PaymentAccount: "a"}, engine.CodeRegisterEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &engine.Session{}
			f.exec(session, tt.cmd)
			f.expectCode(tt.cmd, tt.code)
			if tt.cmd.Result() != nil || session.User != nil {
				t.Error("rejected registration must not log anyone in")
			}
		})
	}
}

func TestRegisterOrganiser_OrgTaken(t *testing.T) {
	f := newFixture(t)
	f.organiser("a@example.com", "Fringe")

	same := &engine.RegisterOrganiser{
		OrgName: "Fringe", OrgAddress: "1 High Street", PaymentAccount: "p",
		MainRepName: "r", Email: "b@example.com", Password: "pw",
	}
	f.exec(&engine.Session{}, same)
	f.expectCode(same, engine.CodeRegisterOrgTaken)

	// Same name at a different address is a different organisation.
	moved := &engine.RegisterOrganiser{
		OrgName: "Fringe", OrgAddress: "2 Low Street", PaymentAccount: "p",
		MainRepName: "r", Email: "c@example.com", Password: "pw",
	}
	f.exec(&engine.Session{}, moved)
	f.expectCode(moved, engine.CodeRegisterOrganiserSuccess)
	if moved.Result().Inventory == nil {
		t.Fatal("organiser must own an inventory system")
	}
}

func TestLoginLogout(t *testing.T) {
	f := newFixture(t)
	f.consumer("c@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"unknown email", "nobody@example.com", "secret", engine.CodeLoginEmailNotRegistered},
		{"wrong password", "c@example.com", "nope", engine.CodeLoginWrongPassword},
		{"ok", "c@example.com", "secret", engine.CodeLoginSuccess},
	}
	s := &engine.Session{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &engine.Login{Email: tt.email, Password: tt.password}
			f.exec(s, cmd)
			f.expectCode(cmd, tt.code)
		})
	}
	if s.User == nil || s.User.Acct().Email != "c@example.com" {
		t.Fatal("expected consumer to be logged in")
	}

	out := &engine.Logout{}
	f.exec(s, out)
	f.expectCode(out, engine.CodeLogoutSuccess)
	if s.User != nil {
		t.Fatal("expected session to be cleared")
	}
	again := &engine.Logout{}
	f.exec(s, again)
	f.expectCode(again, engine.CodeLogoutNotLoggedIn)
}

func TestUpdateConsumerProfile(t *testing.T) {
	f := newFixture(t)
	s, c := f.consumer("c@example.com")
	f.consumer("other@example.com")
	orgS, _ := f.organiser("org@example.com", "Fringe")

	valid := func() *engine.UpdateConsumerProfile {
		return &engine.UpdateConsumerProfile{
			OldPassword:       "secret",
			NewName:           "New Name",
			NewEmail:          "new@example.com",
			NewPhone:          "999",
			NewPassword:       "changed",
			NewPaymentAccount: "new-pay",
			NewPreferences:    domain.Preferences{OutdoorsOnly: true, MaxCapacity: 10, MaxVenueSize: 10},
		}
	}

	blankPhone := valid()
	blankPhone.NewPhone = ""
	wrongPassword := valid()
	wrongPassword.OldPassword = "nope"
	taken := valid()
	taken.NewEmail = "other@example.com"

	tests := []struct {
		name    string
		session *engine.Session
		cmd     *engine.UpdateConsumerProfile
		code    string
	}{
		{"blank field", s, blankPhone, engine.CodeUpdateProfileFieldsBlank},
		{"anonymous", &engine.Session{}, valid(), engine.CodeUpdateProfileNotLoggedIn},
		{"wrong password", s, wrongPassword, engine.CodeUpdateProfileWrongPassword},
		{"email in use", s, taken, engine.CodeUpdateProfileEmailInUse},
		{"organiser", orgS, &engine.UpdateConsumerProfile{
			OldPassword: "secret", NewName: "n", NewEmail: "org@example.com", NewPhone: "1",
			NewPassword: "p", NewPaymentAccount: "a",
		}, engine.CodeUpdateProfileNotConsumer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.exec(tt.session, tt.cmd)
			f.expectCode(tt.cmd, tt.code)
			if tt.cmd.Result() {
				t.Error("expected no result")
			}
		})
	}

	cmd := valid()
	f.exec(s, cmd)
	f.expectCode(cmd, engine.CodeUpdateProfileSuccess)
	if c.Email != "new@example.com" || c.Name != "New Name" || !c.Preferences.OutdoorsOnly {
		t.Errorf("profile not updated: %+v", c)
	}
	if _, ok := f.eng.Store().User("c@example.com"); ok {
		t.Error("old email must be released")
	}
	login := &engine.Login{Email: "new@example.com", Password: "changed"}
	f.exec(&engine.Session{}, login)
	f.expectCode(login, engine.CodeLoginSuccess)

	// Keeping one's own email is not a conflict.
	keep := valid()
	keep.OldPassword = "changed"
	f.exec(s, keep)
	f.expectCode(keep, engine.CodeUpdateProfileSuccess)
}

func TestUpdateOrganiserProfile(t *testing.T) {
	f := newFixture(t)
	s, org := f.organiser("org@example.com", "Fringe")
	f.organiser("other@example.com", "Festival")

	cmd := func(orgName string) *engine.UpdateOrganiserProfile {
		return &engine.UpdateOrganiserProfile{
			OldPassword:       "secret",
			NewOrgName:        orgName,
			NewOrgAddress:     "1 High Street",
			NewPaymentAccount: "pay",
			NewMainRepName:    "Rep",
			NewEmail:          "org@example.com",
			NewPassword:       "secret",
			NewOtherRepNames:  []string{"Deputy"},
			NewOtherRepEmails: []string{"deputy@example.com"},
		}
	}

	clash := cmd("Festival")
	f.exec(s, clash)
	f.expectCode(clash, engine.CodeUpdateProfileOrgTaken)

	unchanged := cmd("Fringe")
	f.exec(s, unchanged)
	f.expectCode(unchanged, engine.CodeUpdateProfileSuccess)

	renamed := cmd("Fringe Society")
	f.exec(s, renamed)
	f.expectCode(renamed, engine.CodeUpdateProfileSuccess)
	if org.OrgName != "Fringe Society" || len(org.OtherRepNames) != 1 {
		t.Errorf("profile not updated: %+v", org)
	}

	conS, _ := f.consumer("c@example.com")
	wrongKind := cmd("Anything")
	wrongKind.NewEmail = "c@example.com"
	f.exec(conS, wrongKind)
	f.expectCode(wrongKind, engine.CodeUpdateProfileNotOrganiser)
}
