package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/atomic"
)

// ErrStableNodeIdentityUnavailable indicates no stable node identity is available.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// ObjectID generates 32-byte hex IDs: 6 bytes of millisecond timestamp,
// 6 bytes of node identity, a 4 byte counter and 16 random bytes.
//
// The random tail makes the value unguessable, so it is suitable for reset
// tokens that are only ever stored hashed.
type ObjectID struct {
	node    [6]byte
	counter *atomic.Uint32
	now     func() time.Time
}

// NewObjectID creates a generator with a node identity derived from
// /etc/machine-id or the hostname.
func NewObjectID() (*ObjectID, error) {
	src, err := machineIdentity()
	if err != nil {
		return nil, err
	}

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}

	g := &ObjectID{
		counter: atomic.NewUint32(binary.BigEndian.Uint32(seed[:])),
		now:     time.Now,
	}
	sum := sha256.Sum256([]byte(src))
	copy(g.node[:], sum[:6])

	return g, nil
}

// Generate returns a 64-char hex string.
func (g *ObjectID) Generate() string {
	var raw [32]byte

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(g.now().UnixMilli()))
	copy(raw[0:6], ts[2:])
	copy(raw[6:12], g.node[:])
	binary.BigEndian.PutUint32(raw[12:16], g.counter.Inc())

	if _, err := rand.Read(raw[16:]); err != nil {
		sum := sha256.Sum256(raw[:16])
		copy(raw[16:], sum[:16])
	}

	return hex.EncodeToString(raw[:])
}

func machineIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}

	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}

	return "", ErrStableNodeIdentityUnavailable
}
