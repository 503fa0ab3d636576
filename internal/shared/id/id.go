// Package id generates the identifiers used for engines and trace events.
//
// IDs are ULIDs behind a short type prefix, eng_* or evt_*, so a log line
// says what it refers to. Event IDs from one process sort in the order they
// were issued; a tracer's sequence number remains the authoritative order.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EngineID identifies an engine instance
type EngineID string

// EventID identifies a recorded numeric event
type EventID string

const (
	EnginePrefix = "eng"
	EventPrefix  = "evt"
)

// source hands out ULIDs that increase monotonically within a millisecond.
// The monotonic reader is not safe for concurrent use.
type source struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func newSource(entropy io.Reader, now func() time.Time) *source {
	return &source{entropy: entropy, now: now}
}

func (s *source) next() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy)
}

func (s *source) prefixed(prefix string) string {
	return prefix + "_" + s.next().String()
}

var process = newSource(ulid.Monotonic(rand.Reader, 0), time.Now)

// NewEngineID generates a new engine ID
func NewEngineID() EngineID {
	return EngineID(process.prefixed(EnginePrefix))
}

// NewEventID generates a new event ID
func NewEventID() EventID {
	return EventID(process.prefixed(EventPrefix))
}

func (id EngineID) String() string { return string(id) }
func (id EventID) String() string  { return string(id) }

// Time returns when the engine was created
func (id EngineID) Time() (time.Time, error) { return issuedAt(EnginePrefix, string(id)) }

// Time returns when the event was recorded
func (id EventID) Time() (time.Time, error) { return issuedAt(EventPrefix, string(id)) }

func issuedAt(prefix, s string) (time.Time, error) {
	raw, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return time.Time{}, fmt.Errorf("id: %q lacks prefix %s_", s, prefix)
	}
	parsed, err := ulid.ParseStrict(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("id: %q: %w", s, err)
	}
	return ulid.Time(parsed.Time()), nil
}
