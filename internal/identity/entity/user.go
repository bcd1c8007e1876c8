package entity

import "time"

// StartingCredits is granted to every new account.
const StartingCredits int64 = 1000

type User struct {
	ID          int64
	Email       string
	FullName    string
	Status      UserStatus
	Credits     int64
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

type UserLoginInfo struct {
	ID       int64
	Email    string
	Status   UserStatus
	Password string
}

type NewUser struct {
	ID       int64
	Email    string
	FullName string
	Status   UserStatus
	Credits  int64
}

// OtpChallenge is the pending verification code of an account, stored only as a hash.
type OtpChallenge struct {
	UserID   int64  `json:"user_id"`
	CodeHash string `json:"code_hash"`
}
