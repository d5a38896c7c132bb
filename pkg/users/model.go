package users

import (
	"time"

	"github.com/mssola/useragent"
)

type User struct {
	ID                 int64      `json:"id"`
	UUID               string     `json:"uuid"`
	Email              string     `json:"email"`
	UserType           string     `json:"user_type"`
	IsActive           bool       `json:"is_active"`
	VerifiedAt         *time.Time `json:"verified_at"`
	ActionsFrozenUntil *time.Time `json:"actions_frozen_until"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsActionsFrozen reports whether the freeze window is still open at now.
func (u User) IsActionsFrozen(now time.Time) bool {
	return u.ActionsFrozenUntil != nil && u.ActionsFrozenUntil.After(now)
}

func (u User) IsVerified() bool {
	return u.VerifiedAt != nil
}

type LoginRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Mobile    bool      `json:"mobile"`
	Timestamp time.Time `json:"timestamp"`
}

// describeAgent fills the device fields parsed from UserAgent.
func (r *LoginRecord) describeAgent() {
	if r.UserAgent == "" {
		return
	}
	ua := useragent.New(r.UserAgent)
	name, version := ua.Browser()
	if version != "" {
		name += " " + version
	}
	r.Browser = name
	r.OS = ua.OS()
	r.Mobile = ua.Mobile()
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
