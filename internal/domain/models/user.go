package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of authorization roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role  Role               `bson:"role" json:"role"`

	// Password holds the bcrypt hash. Never serialized to clients.
	Password             string    `bson:"password" json:"-"`
	PasswordChangedAt    time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string    `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	// Active is a pointer so that the zero value (field absent) reads as
	// active; delete-me sets it to false.
	Active *bool `bson:"active,omitempty" json:"-"`
}

func (u *User) BeforeInsert() {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Photo == "" {
		u.Photo = "default.jpg"
	}
}

// ChangedPasswordAfter reports whether the password changed after the given
// token issuance time.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// compare at second precision; JWT iat has no sub-second resolution
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// PhotoFilename builds the deterministic name for a processed user image:
// user-<id>-<timestamp>.jpeg
func (u *User) PhotoFilename(now time.Time) string {
	return fmt.Sprintf("user-%s-%d.jpeg", u.ID.Hex(), now.UnixMilli())
}
