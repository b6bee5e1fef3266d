package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// memoryPath is the SQLite path of a private in-memory database.
const memoryPath = ":memory:"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
	cfg  Config
}

// Config holds SQLite store configuration
type Config struct {
	Path            string        `yaml:"path" validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" validate:"gte=0"`
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	// Every connection to :memory: opens a separate database.
	if cfg.Path == memoryPath {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	return &SQLiteStore{
		path: cfg.Path,
		cfg:  cfg,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate", s.path)
	if s.path != memoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

const chartColumns = `id, label, birth_instant, latitude, longitude, timezone, design_instant,
	chart_type, strategy, authority, profile, definition, incarnation_cross, snapshot, created_at`

// CreateChart inserts a chart record
func (s *SQLiteStore) CreateChart(ctx context.Context, chart *ChartRecord) error {
	query := `INSERT INTO charts (` + chartColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if chart.CreatedAt.IsZero() {
		chart.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		chart.ID,
		chart.Label,
		chart.BirthInstant.UTC(),
		chart.Latitude,
		chart.Longitude,
		chart.Timezone,
		chart.DesignInstant.UTC(),
		chart.Type,
		chart.Strategy,
		chart.Authority,
		chart.Profile,
		chart.Definition,
		chart.IncarnationCross,
		chart.Snapshot,
		chart.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChart(row rowScanner) (*ChartRecord, error) {
	c := &ChartRecord{}
	err := row.Scan(
		&c.ID,
		&c.Label,
		&c.BirthInstant,
		&c.Latitude,
		&c.Longitude,
		&c.Timezone,
		&c.DesignInstant,
		&c.Type,
		&c.Strategy,
		&c.Authority,
		&c.Profile,
		&c.Definition,
		&c.IncarnationCross,
		&c.Snapshot,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.BirthInstant = c.BirthInstant.UTC()
	c.DesignInstant = c.DesignInstant.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

// GetChart retrieves a chart by ID
func (s *SQLiteStore) GetChart(ctx context.Context, id string) (*ChartRecord, error) {
	query := `SELECT ` + chartColumns + ` FROM charts WHERE id = ?`

	chart, err := scanChart(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chart %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}

	return chart, nil
}

// ListCharts lists charts newest first
func (s *SQLiteStore) ListCharts(ctx context.Context, filter ChartFilter) ([]*ChartRecord, error) {
	query := `SELECT ` + chartColumns + ` FROM charts
		WHERE (? = '' OR chart_type = ?)
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, query, filter.Type, filter.Type, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	defer rows.Close()

	charts := []*ChartRecord{}
	for rows.Next() {
		chart, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chart: %w", err)
		}
		charts = append(charts, chart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating charts: %w", err)
	}

	return charts, nil
}

// CountCharts returns the number of archived charts
func (s *SQLiteStore) CountCharts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM charts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count charts: %w", err)
	}
	return n, nil
}

// DeleteChart deletes a chart by ID
func (s *SQLiteStore) DeleteChart(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chart: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("chart %s: %w", id, ErrNotFound)
	}

	return nil
}

// AppendEvent appends a new event to the log
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *ChartEvent) error {
	query := `
		INSERT INTO chart_events (chart_id, event_type, level, message, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, query,
		event.ChartID,
		event.Type,
		event.Level,
		event.Message,
		event.Details,
		event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get event ID: %w", err)
	}

	event.ID = id
	return nil
}

// ListEvents retrieves events, optionally for one chart, newest first
func (s *SQLiteStore) ListEvents(ctx context.Context, chartID *string, limit, offset int) ([]*ChartEvent, error) {
	query := `
		SELECT id, chart_id, event_type, level, message, details, timestamp
		FROM chart_events
		WHERE (? IS NULL OR chart_id = ?)
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, chartID, chartID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*ChartEvent{}
	for rows.Next() {
		event := &ChartEvent{}
		err := rows.Scan(
			&event.ID,
			&event.ChartID,
			&event.Type,
			&event.Level,
			&event.Message,
			&event.Details,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
