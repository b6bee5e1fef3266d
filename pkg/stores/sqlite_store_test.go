package stores

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

func testChart(id, chartType string, created time.Time) *ChartRecord {
	return &ChartRecord{
		ID:               id,
		Label:            "test " + id,
		BirthInstant:     time.Date(1984, 1, 11, 12, 0, 0, 0, time.UTC),
		Latitude:         51.5,
		Longitude:        -0.12,
		Timezone:         "Europe/London",
		DesignInstant:    time.Date(1983, 10, 14, 7, 31, 0, 0, time.UTC),
		Type:             chartType,
		Strategy:         "To Respond",
		Authority:        "Sacral",
		Profile:          "1/3",
		Definition:       "Single",
		IncarnationCross: "Right Angle Cross of 38/39 | 48/21",
		Snapshot:         `{"type":"` + chartType + `"}`,
		CreatedAt:        created,
	}
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewSQLiteStoreConfig(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}

	mem, err := NewSQLiteStore(Config{Path: ":memory:", MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if mem.cfg.MaxOpenConns != 1 || mem.cfg.MaxIdleConns != 1 {
		t.Errorf("in-memory store should use one connection, got open=%d idle=%d",
			mem.cfg.MaxOpenConns, mem.cfg.MaxIdleConns)
	}

	file, err := NewSQLiteStore(Config{Path: "charts.db"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if file.cfg.MaxOpenConns != 25 || file.cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("unexpected defaults: %+v", file.cfg)
	}
}

func TestHealthCheckBeforeInit(t *testing.T) {
	store, err := NewSQLiteStore(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check to fail before Init")
	}
	if err := store.Migrate(context.Background()); err == nil {
		t.Error("expected migrate to fail before Init")
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Check that tables exist by querying them
	tables := []string{"charts", "chart_events"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}

	// Running migrations again is a no-op
	if err := store.Migrate(ctx); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
}

func TestFileStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts.db")
	ctx := context.Background()

	open := func() *SQLiteStore {
		store, err := NewSQLiteStore(Config{Path: path})
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		if err := store.Init(ctx); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to migrate store: %v", err)
		}
		return store
	}

	store := open()
	if err := store.CreateChart(ctx, testChart("c1", "Generator", time.Now().UTC())); err != nil {
		t.Fatalf("failed to create chart: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	store = open()
	defer store.Close()
	if _, err := store.GetChart(ctx, "c1"); err != nil {
		t.Errorf("chart not persisted across reopen: %v", err)
	}
}

// TestChartCRUD tests chart create, read and delete
func TestChartCRUD(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	chart := testChart("chart-1", "Generator", created)

	if err := store.CreateChart(ctx, chart); err != nil {
		t.Fatalf("failed to create chart: %v", err)
	}

	retrieved, err := store.GetChart(ctx, "chart-1")
	if err != nil {
		t.Fatalf("failed to get chart: %v", err)
	}

	if retrieved.Label != chart.Label {
		t.Errorf("expected label %s, got %s", chart.Label, retrieved.Label)
	}
	if !retrieved.BirthInstant.Equal(chart.BirthInstant) {
		t.Errorf("expected birth %v, got %v", chart.BirthInstant, retrieved.BirthInstant)
	}
	if !retrieved.DesignInstant.Equal(chart.DesignInstant) {
		t.Errorf("expected design %v, got %v", chart.DesignInstant, retrieved.DesignInstant)
	}
	if !retrieved.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, retrieved.CreatedAt)
	}
	if retrieved.Latitude != 51.5 || retrieved.Longitude != -0.12 {
		t.Errorf("unexpected coordinates %v, %v", retrieved.Latitude, retrieved.Longitude)
	}
	if retrieved.Profile != "1/3" || retrieved.IncarnationCross != chart.IncarnationCross {
		t.Errorf("unexpected classification %+v", retrieved)
	}
	if retrieved.Snapshot != chart.Snapshot {
		t.Errorf("expected snapshot %s, got %s", chart.Snapshot, retrieved.Snapshot)
	}

	// Duplicate IDs are rejected
	if err := store.CreateChart(ctx, testChart("chart-1", "Projector", created)); err == nil {
		t.Error("expected error for duplicate chart ID")
	}

	if err := store.DeleteChart(ctx, "chart-1"); err != nil {
		t.Fatalf("failed to delete chart: %v", err)
	}

	_, err = store.GetChart(ctx, "chart-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	err = store.DeleteChart(ctx, "chart-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestCreateChartSetsCreatedAt(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	chart := testChart("c1", "Reflector", time.Time{})
	before := time.Now().UTC().Add(-time.Second)

	if err := store.CreateChart(ctx, chart); err != nil {
		t.Fatalf("failed to create chart: %v", err)
	}
	if chart.CreatedAt.Before(before) {
		t.Errorf("expected CreatedAt to be set, got %v", chart.CreatedAt)
	}
}

func TestListCharts(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	types := []string{"Generator", "Projector", "Generator", "Manifestor", "Reflector"}
	for i, typ := range types {
		id := string(rune('a' + i))
		if err := store.CreateChart(ctx, testChart(id, typ, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("failed to create chart %s: %v", id, err)
		}
	}

	tests := []struct {
		name   string
		filter ChartFilter
		want   []string
	}{
		{"all newest first", ChartFilter{}, []string{"e", "d", "c", "b", "a"}},
		{"by type", ChartFilter{Type: "Generator"}, []string{"c", "a"}},
		{"limit", ChartFilter{Limit: 2}, []string{"e", "d"}},
		{"offset", ChartFilter{Limit: 2, Offset: 3}, []string{"b", "a"}},
		{"offset past end", ChartFilter{Offset: 10}, []string{}},
		{"unknown type", ChartFilter{Type: "Wizard"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charts, err := store.ListCharts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("failed to list charts: %v", err)
			}
			if len(charts) != len(tt.want) {
				t.Fatalf("expected %d charts, got %d", len(tt.want), len(charts))
			}
			for i, c := range charts {
				if c.ID != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], c.ID)
				}
			}
		})
	}

	n, err := store.CountCharts(ctx)
	if err != nil {
		t.Fatalf("failed to count charts: %v", err)
	}
	if n != len(types) {
		t.Errorf("expected %d charts, got %d", len(types), n)
	}
}

// TestEventOperations tests event operations
func TestEventOperations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	chartID := "chart-1"
	otherID := "chart-2"
	details := `{"saved":true}`

	events := []*ChartEvent{
		{ChartID: &chartID, Type: "chart.computed", Level: EventLevelInfo, Message: "computed", Details: &details},
		{ChartID: &otherID, Type: "chart.failed", Level: EventLevelError, Message: "imprint not found"},
		{ChartID: &chartID, Type: "chart.deleted", Level: EventLevelInfo, Message: "deleted"},
		{Type: "config.reloaded", Level: EventLevelInfo, Message: "reloaded"},
	}

	for _, event := range events {
		if err := store.AppendEvent(ctx, event); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		if event.ID == 0 {
			t.Error("expected event ID to be set")
		}
		if event.Timestamp.IsZero() {
			t.Error("expected event timestamp to be set")
		}
	}

	all, err := store.ListEvents(ctx, nil, 0, 0)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	if all[0].Type != "config.reloaded" || all[0].ChartID != nil {
		t.Errorf("expected newest event first without chart, got %+v", all[0])
	}

	forChart, err := store.ListEvents(ctx, &chartID, 0, 0)
	if err != nil {
		t.Fatalf("failed to list chart events: %v", err)
	}
	if len(forChart) != 2 {
		t.Fatalf("expected 2 events for %s, got %d", chartID, len(forChart))
	}
	if forChart[0].Type != "chart.deleted" || forChart[1].Type != "chart.computed" {
		t.Errorf("unexpected order: %s, %s", forChart[0].Type, forChart[1].Type)
	}
	if forChart[1].Details == nil || *forChart[1].Details != details {
		t.Errorf("expected details %s, got %v", details, forChart[1].Details)
	}

	page, err := store.ListEvents(ctx, nil, 1, 1)
	if err != nil {
		t.Fatalf("failed to page events: %v", err)
	}
	if len(page) != 1 || page[0].Type != "chart.deleted" {
		t.Errorf("unexpected page %+v", page)
	}
}

// Events outlive the chart they describe.
func TestEventsSurviveChartDelete(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id := "chart-1"
	if err := store.CreateChart(ctx, testChart(id, "Generator", time.Now().UTC())); err != nil {
		t.Fatalf("failed to create chart: %v", err)
	}
	if err := store.AppendEvent(ctx, &ChartEvent{ChartID: &id, Type: "chart.computed", Level: EventLevelInfo, Message: "ok"}); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}
	if err := store.DeleteChart(ctx, id); err != nil {
		t.Fatalf("failed to delete chart: %v", err)
	}

	events, err := store.ListEvents(ctx, &id, 0, 0)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected event to survive chart deletion, got %d", len(events))
	}
}

// TestMain sets up and tears down test environment
func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()

	// Exit
	os.Exit(code)
}
