package otp

import "time"

type OTP struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type VerifyResult struct {
	Detail      string `json:"detail"`
	AccessToken string `json:"access_token"`
}
