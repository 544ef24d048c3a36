package domain

import (
	"database/sql"
	"time"
)

// Roles stored in user_profiles.role.
const (
	RolePatient       = "patient"
	RoleHospitalStaff = "hospital_staff"
	RoleAdmin         = "admin"
)

// Account 认证账号（对应 auth_accounts 表）
// Only the credential pair lives here; everything domain-level is in UserProfile.
type Account struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"` // bcrypt
	CreatedAt    time.Time `db:"created_at"`
}

// UserProfile 用户档案（对应 user_profiles 表）
// Shares its id with the auth account. hospital_staff/admin carry a
// hospital_id; patients do not.
type UserProfile struct {
	ID         string         `db:"id"`
	Role       string         `db:"role"`
	HospitalID sql.NullString `db:"hospital_id"`
	Phone      sql.NullString `db:"phone"`
	FullName   sql.NullString `db:"full_name"`
	AvatarURL  sql.NullString `db:"avatar_url"`
}

// IsStaff reports whether the profile may touch bed records at all.
func (p *UserProfile) IsStaff() bool {
	return p.Role == RoleHospitalStaff || p.Role == RoleAdmin
}

// Identity 当前会话身份：opaque token + 所属用户
type Identity struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the resolved security context handed to handlers: the identity
// plus its profile. Profile may be nil when the profile row is missing
// (sign-up died between account and profile creation).
type Session struct {
	Identity Identity
	Profile  *UserProfile
}
