package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIsMonotonic(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	src := newSource(ulid.Monotonic(bytes.NewReader(make([]byte, 1024)), 0), func() time.Time { return at })

	first := src.next()
	second := src.next()
	assert.Negative(t, first.Compare(second), "same millisecond still sorts in issue order")
	assert.Equal(t, ulid.Timestamp(at), first.Time())
}

func TestTypedIDs(t *testing.T) {
	engineID := NewEngineID()
	eventID := NewEventID()

	assert.True(t, strings.HasPrefix(engineID.String(), "eng_"))
	assert.True(t, strings.HasPrefix(eventID.String(), "evt_"))
	assert.Len(t, eventID.String(), len("evt_")+26)
}

func TestIDTime(t *testing.T) {
	before := time.Now().Add(-time.Second)

	ts, err := NewEventID().Time()
	require.NoError(t, err)
	assert.False(t, ts.Before(before))

	_, err = NewEngineID().Time()
	require.NoError(t, err)
}

func TestIDTimeRejectsMalformed(t *testing.T) {
	_, err := EventID("eng_01ARZ3NDEKTSV4RRFFQ69G5FAV").Time()
	assert.ErrorContains(t, err, "lacks prefix")

	_, err = EventID("evt_not-a-ulid").Time()
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[EventID]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := NewEventID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
