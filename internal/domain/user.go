package domain

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/sponsored-events/internal/inventory"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt cost used unless configured otherwise.
const DefaultPasswordCost = 12

// User is one of *Consumer, *Organiser or *GovernmentRepresentative.
type User interface {
	Acct() *Account
	isUser()
}

// Account holds the identity shared by every kind of user. Email is the
// unique key of a user in the store.
type Account struct {
	Email          string
	PasswordHash   []byte
	PaymentAccount string
}

func (a *Account) Acct() *Account { return a }

// SetPassword replaces the stored hash with a salted bcrypt hash of password.
func (a *Account) SetPassword(password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) == nil
}

type Preferences struct {
	SocialDistancing bool
	AirFiltration    bool
	OutdoorsOnly     bool
	MaxCapacity      int
	MaxVenueSize     int
}

// DefaultPreferences expresses no preference at all.
func DefaultPreferences() Preferences {
	return Preferences{MaxCapacity: math.MaxInt, MaxVenueSize: math.MaxInt}
}

type Consumer struct {
	Account
	Name        string
	Phone       string
	Preferences Preferences
}

type Organiser struct {
	Account
	OrgName        string
	OrgAddress     string
	MainRepName    string
	OtherRepNames  []string
	OtherRepEmails []string
	Inventory      inventory.System
}

type GovernmentRepresentative struct {
	Account
}

func (*Consumer) isUser()                 {}
func (*Organiser) isUser()                {}
func (*GovernmentRepresentative) isUser() {}

// NewAccount builds an Account with a hashed password.
func NewAccount(email, password, paymentAccount string, cost int) (Account, error) {
	a := Account{Email: email, PaymentAccount: paymentAccount}
	if err := a.SetPassword(password, cost); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Kind names the user variant for logs and responses.
func Kind(u User) string {
	switch u.(type) {
	case *Consumer:
		return "consumer"
	case *Organiser:
		return "organiser"
	case *GovernmentRepresentative:
		return "government_representative"
	default:
		return "anonymous"
	}
}
