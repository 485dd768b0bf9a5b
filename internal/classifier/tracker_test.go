package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/domain"
)

func TestTrackerCancelsSupersededRequest(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan error, 1)
	remote := ClassifierFunc(func(ctx context.Context, text string) (Result, error) {
		if text == "slow" {
			close(started)
			<-ctx.Done()
			cancelled <- ctx.Err()
			return Result{}, ErrUnavailable
		}
		return Result{Sentiment: domain.SentimentSatisfied, SentimentOrigin: domain.OriginRemote}, nil
	})
	tracker := NewTracker(NewComposite(remote, nil, nil))

	firstDone := make(chan Outcome, 1)
	go func() {
		firstDone <- tracker.Classify(context.Background(), "user-3", 1, "slow", "")
	}()
	<-started

	second := tracker.Classify(context.Background(), "user-3", 2, "fast", "")
	assert.False(t, second.Superseded)
	assert.Equal(t, uint64(2), second.Generation)
	assert.Equal(t, domain.SentimentSatisfied, second.Sentiment)

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first request was not cancelled")
	}
	first := <-firstDone
	assert.True(t, first.Superseded)
	assert.Equal(t, uint64(1), first.Generation)
}

func TestTrackerRejectsLateOlderGeneration(t *testing.T) {
	tracker := NewTracker(NewComposite(nil, nil, nil))
	latest := tracker.Classify(context.Background(), "k", 5, "broken fan", "")
	require.False(t, latest.Superseded)
	assert.Equal(t, domain.CategoryInfrastructure, latest.Category)

	late := tracker.Classify(context.Background(), "k", 4, "broken fan", "")
	assert.True(t, late.Superseded)
	assert.Empty(t, late.Category)
}

func TestTrackerAutoGenerationAndKeysAreIndependent(t *testing.T) {
	tracker := NewTracker(NewComposite(nil, nil, nil))
	a1 := tracker.Classify(context.Background(), "a", 0, "x", "")
	a2 := tracker.Classify(context.Background(), "a", 0, "x", "")
	b1 := tracker.Classify(context.Background(), "b", 0, "x", "")
	assert.Equal(t, uint64(1), a1.Generation)
	assert.Equal(t, uint64(2), a2.Generation)
	assert.Equal(t, uint64(1), b1.Generation)

	tracker.Forget("a")
	again := tracker.Classify(context.Background(), "a", 0, "x", "")
	assert.Equal(t, uint64(1), again.Generation)
}
