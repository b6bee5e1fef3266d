package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/stores"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// Options tunes a Service.
type Options struct {
	// Timeout bounds one chart computation. Zero disables the bound.
	Timeout time.Duration

	DefaultListLimit int
	MaxListLimit     int

	// MaxParallel bounds concurrent computations in ComputeBatch.
	MaxParallel int
}

// ChartRequest asks for one chart.
type ChartRequest struct {
	Birth engine.BirthData `json:"birth"`
	Label string           `json:"label,omitempty"`
	Save  bool             `json:"save"`
}

// Chart is a computed chart with its archive identity.
type Chart struct {
	ID        string           `json:"id"`
	Label     string           `json:"label,omitempty"`
	Saved     bool             `json:"saved"`
	CreatedAt time.Time        `json:"created_at"`
	Snapshot  *engine.Snapshot `json:"chart"`
}

// ChartSummary is a list entry. It omits activations.
type ChartSummary struct {
	ID               string    `json:"id"`
	Label            string    `json:"label,omitempty"`
	BirthInstant     time.Time `json:"birth_instant"`
	Timezone         string    `json:"timezone"`
	Type             string    `json:"type"`
	Authority        string    `json:"authority"`
	Profile          string    `json:"profile"`
	IncarnationCross string    `json:"incarnation_cross"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChartList is one page of archived charts.
type ChartList struct {
	Charts []ChartSummary `json:"charts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Service computes charts and manages the archive. It is shared by the CLI
// and the HTTP API. The store and telemetry are optional.
type Service struct {
	calc   *engine.Calculator
	store  stores.Store
	tel    *telemetry.Telemetry
	logger zerolog.Logger

	mu   sync.RWMutex
	opts Options
}

// New creates a Service. When both store and telemetry are given, chart
// lifecycle events are appended to the store's event log.
func New(calc *engine.Calculator, store stores.Store, tel *telemetry.Telemetry, opts Options, logger zerolog.Logger) *Service {
	if opts.DefaultListLimit <= 0 {
		opts.DefaultListLimit = 50
	}
	if opts.MaxListLimit < opts.DefaultListLimit {
		opts.MaxListLimit = opts.DefaultListLimit
	}

	s := &Service{
		calc:   calc,
		store:  store,
		tel:    tel,
		opts:   opts,
		logger: logger.With().Str("component", "chart-service").Logger(),
	}

	if store != nil && tel != nil {
		tel.Events.Subscribe(s.recordEvent, nil)
	}
	return s
}

// SetTimeout changes the computation bound for subsequent requests.
func (s *Service) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Timeout = d
}

// Timeout returns the current computation bound.
func (s *Service) Timeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Timeout
}

// Compute computes a chart and, when requested and a store is configured,
// archives it. A chart that fails to archive is still returned with Saved
// unset.
func (s *Service) Compute(ctx context.Context, req ChartRequest) (*Chart, error) {
	id := uuid.New().String()

	if s.tel != nil {
		ctx = s.tel.WithContext(ctx)
	}
	ctx = telemetry.WithChartContext(ctx, id, req.Birth.Instant, req.Birth.Timezone)

	chart, err := s.compute(ctx, id, req)

	outcome := telemetry.ChartOutcome{ChartID: id}
	if err != nil {
		outcome.ErrorCode = engine.ErrorCode(err)
		if s.tel != nil {
			s.tel.Metrics.RecordError(string(engine.ClassOf(err)), outcome.ErrorCode)
		}
	} else {
		outcome.Type = chart.Snapshot.Type
		outcome.Profile = chart.Snapshot.Profile
		outcome.Saved = chart.Saved
	}
	telemetry.EndChartContext(ctx, outcome, err)

	return chart, err
}

func (s *Service) compute(ctx context.Context, id string, req ChartRequest) (*Chart, error) {
	logger := telemetry.FromContext(ctx)

	if timeout := s.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snap, err := s.calc.Compute(ctx, req.Birth)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && engine.ErrorCode(err) != engine.ErrCodeTimeout {
			err = engine.NewTimeoutError("chart computation exceeded its deadline", err)
		}
		logger.WithError(err).Warn("Chart computation failed")
		return nil, err
	}

	chart := &Chart{
		ID:        id,
		Label:     req.Label,
		CreatedAt: time.Now().UTC(),
		Snapshot:  snap,
	}

	if req.Save && s.store != nil {
		// The archive write is not bound by the computation deadline.
		if err := s.save(context.WithoutCancel(ctx), chart); err != nil {
			logger.WithError(err).Error("Failed to archive chart")
		} else {
			chart.Saved = true
		}
	}

	logger.WithFields(map[string]interface{}{
		"type":    snap.Type,
		"profile": snap.Profile,
		"saved":   chart.Saved,
	}).Info("Chart computed")

	return chart, nil
}

func (s *Service) save(ctx context.Context, chart *Chart) error {
	blob, err := json.Marshal(chart.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	snap := chart.Snapshot
	rec := &stores.ChartRecord{
		ID:               chart.ID,
		Label:            chart.Label,
		BirthInstant:     snap.Birth.Instant,
		Latitude:         snap.Birth.Latitude,
		Longitude:        snap.Birth.Longitude,
		Timezone:         snap.Birth.Timezone,
		DesignInstant:    snap.DesignInstant,
		Type:             snap.Type,
		Strategy:         snap.Strategy,
		Authority:        snap.Authority,
		Profile:          snap.Profile,
		Definition:       snap.Definition,
		IncarnationCross: snap.IncarnationCross,
		Snapshot:         string(blob),
		CreatedAt:        chart.CreatedAt,
	}
	if err := s.store.CreateChart(ctx, rec); err != nil {
		return err
	}

	s.refreshStoredCount(ctx)
	return nil
}

// Get returns an archived chart.
func (s *Service) Get(ctx context.Context, id string) (*Chart, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	rec, err := s.store.GetChart(ctx, id)
	if err != nil {
		return nil, storeError(id, err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(rec.Snapshot), &snap); err != nil {
		return nil, engine.NewInternalError(fmt.Sprintf("chart %s has a corrupt snapshot", id), err)
	}

	return &Chart{
		ID:        rec.ID,
		Label:     rec.Label,
		Saved:     true,
		CreatedAt: rec.CreatedAt,
		Snapshot:  &snap,
	}, nil
}

// List returns one page of archived charts, newest first. A zero limit uses
// the default; larger limits are capped.
func (s *Service) List(ctx context.Context, chartType string, limit, offset int) (*ChartList, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if limit < 0 || offset < 0 {
		return nil, engine.NewValidationError("limit and offset must not be negative", nil)
	}

	s.mu.RLock()
	if limit == 0 {
		limit = s.opts.DefaultListLimit
	}
	if limit > s.opts.MaxListLimit {
		limit = s.opts.MaxListLimit
	}
	s.mu.RUnlock()

	recs, err := s.store.ListCharts(ctx, stores.ChartFilter{Type: chartType, Limit: limit, Offset: offset})
	if err != nil {
		return nil, engine.NewInternalError("failed to list charts", err)
	}
	total, err := s.store.CountCharts(ctx)
	if err != nil {
		return nil, engine.NewInternalError("failed to count charts", err)
	}

	list := &ChartList{
		Charts: make([]ChartSummary, 0, len(recs)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, rec := range recs {
		list.Charts = append(list.Charts, ChartSummary{
			ID:               rec.ID,
			Label:            rec.Label,
			BirthInstant:     rec.BirthInstant,
			Timezone:         rec.Timezone,
			Type:             rec.Type,
			Authority:        rec.Authority,
			Profile:          rec.Profile,
			IncarnationCross: rec.IncarnationCross,
			CreatedAt:        rec.CreatedAt,
		})
	}
	return list, nil
}

// Delete removes an archived chart.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	if err := s.store.DeleteChart(ctx, id); err != nil {
		return storeError(id, err)
	}

	s.logger.Info().Str("chart_id", id).Msg("Chart deleted")
	if s.tel != nil {
		_ = s.tel.Events.PublishChartDeleted(id)
	}
	s.refreshStoredCount(ctx)
	return nil
}

// HealthCheck reports whether the archive is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.HealthCheck(ctx)
}

// RefreshMetrics sets the stored chart gauge from the archive.
func (s *Service) RefreshMetrics(ctx context.Context) {
	if s.store != nil {
		s.refreshStoredCount(ctx)
	}
}

func (s *Service) refreshStoredCount(ctx context.Context) {
	if s.tel == nil {
		return
	}
	n, err := s.store.CountCharts(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count stored charts")
		return
	}
	s.tel.Metrics.SetStoredCharts(float64(n))
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return engine.NewValidationError("chart archive is disabled", nil)
	}
	return nil
}

// recordEvent appends a telemetry event to the archive's event log.
func (s *Service) recordEvent(e telemetry.Event) {
	ev := &stores.ChartEvent{
		Type:      e.Type,
		Level:     stores.EventLevel(e.Level),
		Message:   e.Message,
		Timestamp: e.Timestamp.UTC(),
	}
	if e.ChartID != "" {
		id := e.ChartID
		ev.ChartID = &id
	}
	if len(e.Data) > 0 {
		if blob, err := json.Marshal(e.Data); err == nil {
			details := string(blob)
			ev.Details = &details
		}
	}

	if err := s.store.AppendEvent(context.Background(), ev); err != nil {
		s.logger.Warn().Err(err).Str("event_type", e.Type).Msg("Failed to record event")
	}
}

func storeError(id string, err error) error {
	if errors.Is(err, stores.ErrNotFound) {
		return engine.NewNotFoundError(fmt.Sprintf("chart %s not found", id))
	}
	return engine.NewInternalError("chart archive failed", err)
}
