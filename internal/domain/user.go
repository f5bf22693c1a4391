package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the account lifecycle state. Deleted is terminal: the record
// stays in storage but is excluded from every authentication check.
type Status string

const (
	StatusInactive Status = "0"
	StatusActive   Status = "1"
	StatusDeleted  Status = "2"
)

// Role is a closed two-value set. Anything else must fail closed at the
// authorization layer.
type Role int

const (
	RolePatient Role = 1
	RoleDoctor  Role = 2
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// User is the single document backing credentials, OTP material, the current
// session token and the profile. OTP and token fields are overwritten in
// place; last write wins on concurrent issuance.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName"`
	LastName  string             `bson:"lastName,omitempty"  json:"lastName"`
	UserName  string             `bson:"userName"            json:"userName"`
	Email     string             `bson:"email,omitempty"     json:"email"`
	Password  string             `bson:"password"            json:"-"`
	Image     string             `bson:"image,omitempty"     json:"-"`
	Role      Role               `bson:"role"                json:"role"`

	// EmailVerify is nil until the first successful OTP verification and is
	// never cleared again by normal flow.
	EmailVerify *time.Time `bson:"emailVerify" json:"-"`

	OTP        string     `bson:"otp,omitempty"        json:"-"`
	CodeExpiry *time.Time `bson:"codeExpiry,omitempty" json:"-"`

	// Token is the one currently-valid session token. Overwriting it is the
	// revocation mechanism: an older token may still verify cryptographically
	// but no longer matches the stored value.
	Token string `bson:"token,omitempty" json:"-"`

	Status    Status    `bson:"status"    json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AuthView is the sanitized projection returned by login. It never carries
// the password hash, OTP material or the stored token.
type AuthView struct {
	ID        primitive.ObjectID `json:"id"`
	UserName  string             `json:"userName"`
	Email     string             `json:"email"`
	Role      Role               `json:"role"`
	Status    Status             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (u *User) AuthView() AuthView {
	return AuthView{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ProfilePatch is an explicit optional-field patch: each field is applied
// only when present.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Image     *string
}
