package entity

// DefaultCooldownSeconds is the resend window after a code has been sent.
const DefaultCooldownSeconds = 60

// Cooldown counts the seconds left before a code may be resent.
type Cooldown struct {
	window    int
	remaining int
}

// NewCooldown returns a cooldown that starts full. A non-positive window uses DefaultCooldownSeconds.
func NewCooldown(window int) Cooldown {
	if window <= 0 {
		window = DefaultCooldownSeconds
	}

	return Cooldown{window: window, remaining: window}
}

// Tick removes one second and reports whether the value changed. It never goes below zero.
func (c *Cooldown) Tick() bool {
	if c.remaining <= 0 {
		return false
	}

	c.remaining--
	return true
}

func (c *Cooldown) Reset() {
	c.remaining = c.window
}

func (c Cooldown) Remaining() int {
	return c.remaining
}

func (c Cooldown) Window() int {
	return c.window
}

func (c Cooldown) Elapsed() bool {
	return c.remaining == 0
}
