package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// CodeLength is the number of digits of every generated code.
const CodeLength = 6

// OTP generates one-time numeric codes.
type OTP interface {
	// GenerateCode returns a new zero-padded numeric code.
	GenerateCode() (string, error)
}

// HOTP implements OTP with pquerna/otp.
type HOTP struct {
	digits otp.Digits
	read   func([]byte) (int, error)
}

// NewHOTP returns a six digit code generator.
func NewHOTP() *HOTP {
	return &HOTP{digits: otp.DigitsSix, read: rand.Read}
}

// GenerateCode returns a new six digit code.
func (h *HOTP) GenerateCode() (string, error) {
	var buf [28]byte
	if _, err := h.read(buf[:]); err != nil {
		return "", err
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:20])
	counter := binary.BigEndian.Uint64(buf[20:])

	return hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    h.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
