package entity

import "time"

// Session is the authenticated identity handle returned by the identity provider.
type Session struct {
	UserID      int64
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// PendingAccount is an account created by signup that still waits for its code.
type PendingAccount struct {
	UserID int64
	Email  string
}
