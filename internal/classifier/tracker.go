package classifier

import (
	"context"
	"sync"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// Outcome is a tracked classification. Superseded is set when a newer request
// for the same key started before this one finished; callers should discard it.
type Outcome struct {
	Result
	Generation uint64
	Superseded bool
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// Tracker runs classifications keyed by caller (for example one per editing
// session). Starting a newer generation cancels the in-flight one, and an
// older generation arriving late is rejected without doing any work.
type Tracker struct {
	mu         sync.Mutex
	classifier *Composite
	entries    map[string]*inflight
}

// NewTracker wraps a composite classifier.
func NewTracker(c *Composite) *Tracker {
	return &Tracker{classifier: c, entries: make(map[string]*inflight)}
}

// Classify runs a classification for key. generation 0 means "next".
func (t *Tracker) Classify(ctx context.Context, key string, generation uint64, text string, preset domain.Category) Outcome {
	t.mu.Lock()
	current := t.entries[key]
	if current != nil && generation != 0 && generation <= current.generation {
		t.mu.Unlock()
		return Outcome{Generation: generation, Superseded: true}
	}
	if generation == 0 {
		generation = 1
		if current != nil {
			generation = current.generation + 1
		}
	}
	if current != nil && current.cancel != nil {
		current.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	mine := &inflight{generation: generation, cancel: cancel}
	t.entries[key] = mine
	t.mu.Unlock()

	result := t.classifier.ClassifyWithCategory(runCtx, text, preset)

	t.mu.Lock()
	superseded := t.entries[key] != mine
	if !superseded {
		mine.cancel = nil
	}
	t.mu.Unlock()
	cancel()

	return Outcome{Result: result, Generation: generation, Superseded: superseded}
}

// Forget drops the state kept for key, cancelling anything in flight.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current := t.entries[key]; current != nil && current.cancel != nil {
		current.cancel()
	}
	delete(t.entries, key)
}
