// Package otp generates the numeric one-time codes e-mailed to users when
// they confirm a new account.
//
// Codes are HOTP values (RFC 4226) computed from a fresh random secret and
// counter, so every code is independent of the previous one and no secret has
// to be kept once the code is hashed and stored.
package otp
