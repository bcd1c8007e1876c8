package entity

// UserStatus is the lifecycle state of an account, stored as smallint.
type UserStatus int16

const (
	UserStatusUnknown UserStatus = iota
	// UserStatusUnverified accounts exist but the signup code was never entered.
	UserStatusUnverified
	UserStatusActive
	UserStatusBanned
	// UserStatusInactive accounts were deactivated or closed by their owner.
	UserStatusInactive
)

var userStatusNames = map[UserStatus]string{
	UserStatusUnverified: "Unverified",
	UserStatusActive:     "Active",
	UserStatusBanned:     "Banned",
	UserStatusInactive:   "Inactive",
}

// signInDenials are the messages shown when an account may not sign in.
var signInDenials = map[UserStatus]string{
	UserStatusUnknown:    "Account status is unrecognized",
	UserStatusUnverified: "Email not verified",
	UserStatusBanned:     "Account is banned",
	UserStatusInactive:   "Account is deleted",
}

func (us UserStatus) String() string {
	if name, ok := userStatusNames[us]; ok {
		return name
	}
	return "Unknown"
}

// Ensure maps values read from storage that are out of range to UserStatusUnknown.
func (us UserStatus) Ensure() UserStatus {
	if _, ok := userStatusNames[us]; ok {
		return us
	}
	return UserStatusUnknown
}

// SignInDenial returns why the account may not sign in, or "" when it may.
func (us UserStatus) SignInDenial() string {
	return signInDenials[us.Ensure()]
}
