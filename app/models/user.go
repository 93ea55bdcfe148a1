package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// User is a tenant owner. Every business record (clients, events, catalogs,
// pre-registrations) is scoped by the owning user id.
//
// The Legacy* columns are the flattened subscription shape written by old
// deployments before the consolidated Subscription record existed. They are
// read only by the legacy migration and cleared once the consolidated row
// is confirmed persisted. Admin users never carry a subscription.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email            string     `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password         string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role             string     `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status           string     `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	CompanyName      string     `gorm:"type:varchar(150)" json:"company_name" validate:"max=150"`
	Phone            string     `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	ActivationToken  string     `gorm:"type:varchar(100);index" json:"-"`
	ActivationSentAt *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`

	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`

	LegacyPlanID                *uint      `gorm:"column:legacy_plano_id;default:null" json:"-"`
	LegacySubscriptionID        *uint      `gorm:"column:legacy_assinatura_id;default:null" json:"-"`
	LegacyStatus                string     `gorm:"column:legacy_assinatura_status;type:varchar(50);default:''" json:"-"`
	LegacyHotmartSubscriberCode string     `gorm:"column:legacy_hotmart_subscriber_code;type:varchar(100);default:''" json:"-"`
	LegacyExpiresAt             *time.Time `gorm:"column:legacy_expires_at;type:timestamp;default:null" json:"-"`
	LegacyNextChargeAt          *time.Time `gorm:"column:legacy_next_charge_at;type:timestamp;default:null" json:"-"`
	LegacyPaymentUpToDate       *bool      `gorm:"column:legacy_payment_up_to_date;default:null" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	u := &User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     ROLE_USER,
		Status:   STATUS_INACTIVE,
	}

	// Validate against the raw password; the bcrypt hash is always long
	// enough to satisfy the minimum length no matter what was submitted.
	if err := u.Validate(); err != nil {
		return nil, err
	}

	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.Password = pw

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateActivationToken creates a random token and sets ActivationSentAt
func (u *User) GenerateActivationToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ActivationToken = hex.EncodeToString(b)
	now := time.Now()
	u.ActivationSentAt = &now
	return nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// HasLegacySubscriptionFields reports whether any flattened subscription
// column is still populated on the user row.
func (u *User) HasLegacySubscriptionFields() bool {
	return u.LegacyPlanID != nil ||
		u.LegacySubscriptionID != nil ||
		u.LegacyStatus != "" ||
		u.LegacyHotmartSubscriberCode != "" ||
		u.LegacyExpiresAt != nil ||
		u.LegacyNextChargeAt != nil ||
		u.LegacyPaymentUpToDate != nil
}
