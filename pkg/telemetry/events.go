package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a chart lifecycle or service occurrence.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	ChartID   string                 `json:"chart_id,omitempty"`
	Message   string                 `json:"message"`
	Level     string                 `json:"level"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

const (
	EventTypeChartComputed  = "chart.computed"
	EventTypeChartFailed    = "chart.failed"
	EventTypeChartDeleted   = "chart.deleted"
	EventTypeConfigReloaded = "config.reloaded"
)

const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

var (
	ErrPublisherStopped = errors.New("event publisher stopped")
	ErrEventDropped     = errors.New("event buffer full, event dropped")
)

// EventSubscriber handles one event. Subscribers run on the publisher's
// delivery goroutine in async mode and must not block for long.
type EventSubscriber func(event Event)

// EventFilter reports whether a subscriber wants an event.
type EventFilter func(event Event) bool

// EventPublisher fans events out to subscribers, either inline or through a
// buffered queue drained by one goroutine.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscription
	mu          sync.RWMutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscription struct {
	handle EventSubscriber
	filter EventFilter
}

// NewEventPublisher creates a publisher. A disabled config yields a publisher
// that drops everything.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	ep := &EventPublisher{
		config: cfg,
		buffer: make(chan Event, cfg.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.EnableAsync {
		ep.wg.Add(1)
		go ep.run()
	}
	return ep, nil
}

// Publish stamps the event and delivers or queues it. In async mode a full
// queue drops the event with ErrEventDropped.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if !ep.config.EnableAsync {
		ep.deliver(event)
		return nil
	}

	select {
	case <-ep.ctx.Done():
		return ErrPublisherStopped
	default:
	}

	select {
	case ep.buffer <- event:
		return nil
	default:
		return ErrEventDropped
	}
}

func (ep *EventPublisher) PublishChartComputed(chartID, chartType, profile string, saved bool, duration time.Duration) error {
	return ep.Publish(Event{
		Type:    EventTypeChartComputed,
		Source:  "calculator",
		ChartID: chartID,
		Message: fmt.Sprintf("%s %s chart computed", chartType, profile),
		Level:   EventLevelInfo,
		Data: map[string]interface{}{
			"type":     chartType,
			"profile":  profile,
			"saved":    saved,
			"duration": duration.Seconds(),
		},
	})
}

func (ep *EventPublisher) PublishChartFailed(chartID, code, reason string) error {
	return ep.Publish(Event{
		Type:    EventTypeChartFailed,
		Source:  "calculator",
		ChartID: chartID,
		Message: "chart computation failed: " + reason,
		Level:   EventLevelError,
		Data: map[string]interface{}{
			"code":   code,
			"reason": reason,
		},
	})
}

func (ep *EventPublisher) PublishChartDeleted(chartID string) error {
	return ep.Publish(Event{
		Type:    EventTypeChartDeleted,
		Source:  "archive",
		ChartID: chartID,
		Message: "chart deleted from archive",
		Level:   EventLevelInfo,
	})
}

func (ep *EventPublisher) PublishConfigReloaded(path string) error {
	return ep.Publish(Event{
		Type:    EventTypeConfigReloaded,
		Source:  "config",
		Message: "configuration reloaded from " + path,
		Level:   EventLevelInfo,
		Data:    map[string]interface{}{"path": path},
	})
}

// Subscribe registers a handler. A nil filter accepts every event.
func (ep *EventPublisher) Subscribe(handle EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.subscribers = append(ep.subscribers, subscription{handle: handle, filter: filter})
}

// run drains the queue, delivering a batch when it is full or when the
// flush interval elapses. On shutdown everything still queued is delivered.
func (ep *EventPublisher) run() {
	defer ep.wg.Done()

	var tick <-chan time.Time
	if ep.config.FlushInterval > 0 {
		ticker := time.NewTicker(ep.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	maxBatch := max(ep.config.MaxBatchSize, 1)
	batch := make([]Event, 0, maxBatch)
	flush := func() {
		for _, event := range batch {
			ep.deliver(event)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event := <-ep.buffer:
			batch = append(batch, event)
			if len(batch) >= maxBatch {
				flush()
			}
		case <-tick:
			flush()
		case <-ep.ctx.Done():
			for {
				select {
				case event := <-ep.buffer:
					batch = append(batch, event)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (ep *EventPublisher) deliver(event Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	for _, sub := range ep.subscribers {
		if sub.filter == nil || sub.filter(event) {
			sub.handle(event)
		}
	}
}

// Shutdown stops accepting events and waits until queued ones are delivered
// or ctx ends.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if !ep.config.Enabled {
		return nil
	}
	ep.cancel()

	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown: %w", ctx.Err())
	}
}

// FilterByLevel accepts events at minLevel or above.
func FilterByLevel(minLevel string) EventFilter {
	rank := map[string]int{EventLevelInfo: 0, EventLevelWarning: 1, EventLevelError: 2}
	floor := rank[minLevel]
	return func(event Event) bool {
		return rank[event.Level] >= floor
	}
}

func FilterByType(types ...string) EventFilter {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(event Event) bool {
		return set[event.Type]
	}
}

func FilterByChartID(chartID string) EventFilter {
	return func(event Event) bool {
		return event.ChartID == chartID
	}
}
