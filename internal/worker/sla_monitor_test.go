package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/sla"
)

type staticSource struct {
	items []domain.Complaint
	err   error
}

func (s *staticSource) All(context.Context) ([]domain.Complaint, error) {
	return s.items, s.err
}

type gaugeSpy struct {
	breached, near int
}

func (g *gaugeSpy) SetSLAState(breached, near int) {
	g.breached, g.near = breached, near
}

func complaint(id string, p domain.Priority, status domain.ComplaintStatus, created time.Time) domain.Complaint {
	return domain.Complaint{ID: id, Priority: p, Status: status, CreatedAt: created, SLADeadline: sla.Deadline(p, created)}
}

func TestSLAMonitorEmitsEachEventOnce(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	source := &staticSource{items: []domain.Complaint{
		complaint("CMP-2024-00001", domain.PriorityCritical, domain.StatusNew, start),
		complaint("CMP-2024-00002", domain.PriorityCritical, domain.StatusResolved, start),
		complaint("CMP-2024-00003", domain.PriorityLow, domain.StatusNew, start),
	}}

	dispatcher := events.NewInMemoryDispatcher(nil)
	var got []events.Event
	events.SubscribeAll(dispatcher, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	gauge := &gaugeSpy{}
	monitor := NewSLAMonitor(source, dispatcher, clk, gauge, nil, time.Minute)
	ctx := context.Background()

	stats, err := monitor.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalActive)
	assert.Empty(t, got)

	clk.Advance(100 * time.Minute)
	_, err = monitor.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, events.EventSLAWarning, got[0].Type)
	assert.Equal(t, "CMP-2024-00001", got[0].ComplaintID)
	payload := got[0].Payload.(events.SLAPayload)
	assert.Equal(t, 20*time.Minute, payload.Remaining)
	assert.Equal(t, 1, gauge.near)

	_, err = monitor.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	clk.Advance(time.Hour)
	_, err = monitor.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, events.EventSLABreached, got[1].Type)
	assert.Equal(t, 1, gauge.breached)
	assert.Equal(t, 0, gauge.near)

	_, err = monitor.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSLAMonitorForgetsSettledComplaints(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start.Add(3 * time.Hour))
	source := &staticSource{items: []domain.Complaint{
		complaint("CMP-2024-00001", domain.PriorityCritical, domain.StatusInProgress, start),
		complaint("CMP-2024-00002", domain.PriorityCritical, domain.StatusNew, start),
	}}
	monitor := NewSLAMonitor(source, events.NewInMemoryDispatcher(nil), clk, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := monitor.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, monitor.breached, 2)

	source.items[0].Status = domain.StatusResolved
	source.items[1].Status = domain.StatusClosed
	_, err = monitor.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, monitor.breached)
	assert.Empty(t, monitor.warned)
}

func TestSLAMonitorSurfacesSourceErrors(t *testing.T) {
	monitor := NewSLAMonitor(&staticSource{err: errors.New("db down")}, nil, nil, nil, nil, 0)
	_, err := monitor.Scan(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestSLAMonitorRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	monitor := NewSLAMonitor(&staticSource{}, nil, nil, nil, nil, time.Hour)
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

type registrarSpy struct{ calls int }

func (r *registrarSpy) RegisterHandlers() { r.calls++ }

func TestStartEventHandlers(t *testing.T) {
	a, b := &registrarSpy{}, &registrarSpy{}
	StartEventHandlers(a, nil, b)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
