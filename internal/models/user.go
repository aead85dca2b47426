package models

import "time"

// User represents a platform account
type User struct {
	ID               string     `json:"id"`                 // user UUID
	Email            string     `json:"email"`              // unique email, login identifier
	PasswordHash     string     `json:"-"`                  // bcrypt hash, never serialized
	FullName         string     `json:"full_name"`          // optional display name
	Phone            string     `json:"phone"`              // optional phone number
	JobTitle         string     `json:"job_title"`          // optional job title
	IsActive         bool       `json:"is_active"`          // inactive users cannot authenticate
	TwoFactorEnabled bool       `json:"two_factor_enabled"` // whether a TOTP code is required at login
	TwoFactorSecret  string     `json:"-"`                  // base32 TOTP secret, set only while 2FA is enabled
	CreatedAt        time.Time  `json:"created_at"`         // creation time
	LastLogin        *time.Time `json:"last_login"`         // last successful login, nil if never
}

// UserPatch describes a partial profile update.
// Nil fields are left untouched, non-nil fields overwrite.
type UserPatch struct {
	FullName *string
	Phone    *string
	JobTitle *string
}

// Apply copies every provided field onto the user
func (p UserPatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.JobTitle != nil {
		u.JobTitle = *p.JobTitle
	}
}

// RevokedToken represents a revoked session token identifier.
// Records are append-only: once a jti is revoked it stays revoked.
type RevokedToken struct {
	JTI       string    `json:"jti"`        // unique token identifier
	RevokedAt time.Time `json:"revoked_at"` // revocation time
}
