package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/config"
)

var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func run(t *testing.T, load func() (*config.Config, error), args ...string) (string, error) {
	t.Helper()
	if load == nil {
		load = func() (*config.Config, error) { return &config.Config{}, nil }
	}
	cmd := NewRootCommand(load, func() time.Time { return fixedNow })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDeadlineText(t *testing.T) {
	out, err := run(t, nil, "deadline", "--priority", "Critical")
	require.NoError(t, err)
	assert.Equal(t, "Critical complaint created 2024-06-10T09:00:00Z is due 2024-06-10T11:00:00Z (2h0m0s)\n", out)
}

func TestDeadlineJSONWithExplicitTime(t *testing.T) {
	out, err := run(t, nil, "deadline", "--priority", "Medium", "--at", "2024-01-01T00:00:00Z", "-o", "json")
	require.NoError(t, err)
	var view deadlineView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), view.Deadline.UTC())
}

func TestDeadlineRejectsBadInput(t *testing.T) {
	_, err := run(t, nil, "deadline", "--priority", "Urgent")
	assert.ErrorContains(t, err, "invalid priority")
	_, err = run(t, nil, "deadline", "--at", "yesterday")
	assert.ErrorContains(t, err, "invalid --at")
}

func TestClassifyFallsBackToKeywords(t *testing.T) {
	out, err := run(t, nil, "classify", "the", "canteen", "food", "is", "dirty")
	require.NoError(t, err)
	assert.Contains(t, out, "category:  Canteen/Hygiene (local)")
	assert.Contains(t, out, "sentiment: NEUTRAL (local)")
}

func TestClassifyLocalSkipsConfig(t *testing.T) {
	load := func() (*config.Config, error) { return nil, errors.New("should not load") }
	out, err := run(t, load, "classify", "--local", "-o", "json", "ragging by seniors")
	require.NoError(t, err)
	assert.Contains(t, out, `"Ragging"`)

	_, err = run(t, load, "classify", "hello")
	assert.EqualError(t, err, "should not load")
}
