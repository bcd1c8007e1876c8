package otp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHOTP_GenerateCode(t *testing.T) {
	gen := NewHOTP()

	seen := make(map[string]int)
	for range 200 {
		code, err := gen.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
		seen[code]++
	}

	assert.Greater(t, len(seen), 150)
}

func TestHOTP_GenerateCodeRandomFailure(t *testing.T) {
	gen := &HOTP{read: func([]byte) (int, error) { return 0, errors.New("entropy") }}

	_, err := gen.GenerateCode()

	assert.EqualError(t, err, "entropy")
}
