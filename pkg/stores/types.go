package stores

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by lookups and deletes that match no row.
var ErrNotFound = errors.New("not found")

// EventLevel represents the severity level of an event
type EventLevel string

const (
	EventLevelDebug   EventLevel = "debug"
	EventLevelInfo    EventLevel = "info"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// ChartRecord is a computed chart in the archive. The classification columns
// duplicate fields of Snapshot so charts can be listed without decoding it.
type ChartRecord struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`

	BirthInstant time.Time `json:"birth_instant"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timezone     string    `json:"timezone"`

	DesignInstant    time.Time `json:"design_instant"`
	Type             string    `json:"type"`
	Strategy         string    `json:"strategy"`
	Authority        string    `json:"authority"`
	Profile          string    `json:"profile"`
	Definition       string    `json:"definition"`
	IncarnationCross string    `json:"incarnation_cross"`

	Snapshot  string    `json:"snapshot"` // JSON blob
	CreatedAt time.Time `json:"created_at"`
}

// ChartEvent is an append-only record of something that happened to a chart.
type ChartEvent struct {
	ID        int64      `json:"id"`
	ChartID   *string    `json:"chart_id,omitempty"`
	Type      string     `json:"type"`
	Level     EventLevel `json:"level"`
	Message   string     `json:"message"`
	Details   *string    `json:"details,omitempty"` // JSON blob
	Timestamp time.Time  `json:"timestamp"`
}

// ChartFilter narrows ListCharts. Zero values match everything.
type ChartFilter struct {
	Type   string
	Limit  int
	Offset int
}

// Store defines the interface for the chart archive
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Chart operations
	CreateChart(ctx context.Context, chart *ChartRecord) error
	GetChart(ctx context.Context, id string) (*ChartRecord, error)
	ListCharts(ctx context.Context, filter ChartFilter) ([]*ChartRecord, error)
	CountCharts(ctx context.Context) (int, error)
	DeleteChart(ctx context.Context, id string) error

	// Event operations
	AppendEvent(ctx context.Context, event *ChartEvent) error
	ListEvents(ctx context.Context, chartID *string, limit, offset int) ([]*ChartEvent, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
