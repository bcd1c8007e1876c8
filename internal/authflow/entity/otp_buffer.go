package entity

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

const (
	// OtpLength is the number of slots of a verification code.
	OtpLength = 6

	// NoFocus marks a blurred buffer.
	NoFocus = -1
)

// OtpBuffer holds the segmented verification code input.
// Every slot is either empty or exactly one decimal digit.
type OtpBuffer struct {
	slots [OtpLength]string
	focus int
}

// NewOtpBuffer returns an empty buffer focused on the first slot.
func NewOtpBuffer() OtpBuffer {
	return OtpBuffer{}
}

func validSlot(index int) bool {
	return index >= 0 && index < OtpLength
}

func isDigit(value string) bool {
	return len(value) == 1 && value[0] >= '0' && value[0] <= '9'
}

// SetDigit stores value at index. An empty value clears the slot and keeps focus,
// a digit advances focus to the next slot. Anything else is rejected.
func (b *OtpBuffer) SetDigit(index int, value string) bool {
	if !validSlot(index) {
		return false
	}

	if value == "" {
		b.slots[index] = ""
		return true
	}

	if !isDigit(value) {
		return false
	}

	b.slots[index] = value
	if index < OtpLength-1 {
		b.focus = index + 1
	}

	return true
}

// Backspace moves focus to the previous slot when the slot at index is already empty.
// It never deletes the previous slot.
func (b *OtpBuffer) Backspace(index int) bool {
	if !validSlot(index) || index == 0 || b.slots[index] != "" {
		return false
	}

	b.focus = index - 1
	return true
}

// Paste writes the decimal digits of text, in order, into the slots starting at 0.
// Only the first OtpLength digits are used and focus does not move.
// It reports how many slots were written.
func (b *OtpBuffer) Paste(text string) int {
	digits := lo.Filter([]rune(text), func(r rune, _ int) bool {
		return r <= unicode.MaxASCII && unicode.IsDigit(r)
	})
	if len(digits) > OtpLength {
		digits = digits[:OtpLength]
	}

	for i, r := range digits {
		b.slots[i] = string(r)
	}

	return len(digits)
}

func (b *OtpBuffer) Focus(index int) bool {
	if !validSlot(index) {
		return false
	}

	b.focus = index
	return true
}

func (b *OtpBuffer) Blur() {
	b.focus = NoFocus
}

// FocusIndex returns the focused slot or NoFocus.
func (b OtpBuffer) FocusIndex() int {
	return b.focus
}

func (b *OtpBuffer) Clear() {
	b.slots = [OtpLength]string{}
	b.focus = 0
}

func (b OtpBuffer) Complete() bool {
	return lo.EveryBy(b.slots[:], isDigit)
}

func (b OtpBuffer) Code() string {
	return strings.Join(b.slots[:], "")
}

// Slots returns a copy of the slot values.
func (b OtpBuffer) Slots() []string {
	out := make([]string, OtpLength)
	copy(out, b.slots[:])
	return out
}
