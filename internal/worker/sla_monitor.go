package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/sla"
)

// ComplaintSource lists every complaint for a scan.
type ComplaintSource interface {
	All(ctx context.Context) ([]domain.Complaint, error)
}

// SLAGauge receives the counts from each scan.
type SLAGauge interface {
	SetSLAState(breached, nearBreach int)
}

// SLAMonitor periodically scans active complaints and raises a warning event
// once per complaint when it nears its deadline and a breach event once when
// it passes it. It never writes complaints.
type SLAMonitor struct {
	source     ComplaintSource
	dispatcher events.Dispatcher
	clock      clock.Clock
	gauge      SLAGauge
	logger     *zap.Logger
	interval   time.Duration

	mu       sync.Mutex
	warned   map[string]struct{}
	breached map[string]struct{}
}

// NewSLAMonitor builds a monitor. gauge and logger may be nil.
func NewSLAMonitor(source ComplaintSource, dispatcher events.Dispatcher, clk clock.Clock, gauge SLAGauge, logger *zap.Logger, interval time.Duration) *SLAMonitor {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SLAMonitor{
		source:     source,
		dispatcher: dispatcher,
		clock:      clk,
		gauge:      gauge,
		logger:     logger,
		interval:   interval,
		warned:     make(map[string]struct{}),
		breached:   make(map[string]struct{}),
	}
}

// Run scans immediately and then on every tick until ctx is done.
func (m *SLAMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("sla monitor started", zap.Duration("interval", m.interval))
	m.scanAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			m.scanAndLog(ctx)
		}
	}
}

func (m *SLAMonitor) scanAndLog(ctx context.Context) {
	if _, err := m.Scan(ctx); err != nil {
		m.logger.Warn("sla scan failed", zap.Error(err))
	}
}

// Scan evaluates every complaint once and returns the statistics it saw.
func (m *SLAMonitor) Scan(ctx context.Context) (sla.Statistics, error) {
	complaints, err := m.source.All(ctx)
	if err != nil {
		return sla.Statistics{}, err
	}
	now := m.clock.Now()
	stats := sla.Summarize(complaints, now)
	if m.gauge != nil {
		m.gauge.SetSLAState(stats.Breached, stats.NearBreach)
	}

	for i := range complaints {
		c := &complaints[i]
		switch {
		case sla.IsTerminal(c.Status):
			m.forget(c.ID)
		case sla.IsBreached(c, now):
			if m.markOnce(m.breached, c.ID) {
				m.publish(ctx, events.EventSLABreached, c, now)
			}
		case sla.IsNearBreach(c, now):
			if m.markOnce(m.warned, c.ID) {
				m.publish(ctx, events.EventSLAWarning, c, now)
			}
		}
	}
	return stats, nil
}

func (m *SLAMonitor) markOnce(seen map[string]struct{}, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	return true
}

// forget drops a settled complaint; settled complaints never become active again.
func (m *SLAMonitor) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.warned, id)
	delete(m.breached, id)
}

func (m *SLAMonitor) publish(ctx context.Context, t events.EventType, c *domain.Complaint, now time.Time) {
	if m.dispatcher == nil {
		return
	}
	event := events.New(t, c.ID, events.Actor{}, now, events.SLAPayload{
		Priority:    c.Priority,
		SLADeadline: c.SLADeadline,
		Remaining:   sla.TimeRemaining(c, now),
	})
	if err := m.dispatcher.Publish(ctx, event); err != nil {
		m.logger.Warn("publish sla event failed", zap.String("complaint_id", c.ID), zap.Error(err))
	}
}
