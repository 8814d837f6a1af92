package model

import "time"

const (
	OtpPurposeLogin    = "login"
	OtpPurposeRegister = "register"
	OtpPurposeReset    = "reset"
)

// OtpRequest is an ephemeral one-time-code record. It is deleted on
// successful verification and invalidated by expiry or the attempt cap.
type OtpRequest struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Purpose   string    `json:"purpose"`
	CodeHash  string    `json:"-"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
