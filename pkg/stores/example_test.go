package stores_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openfroyo/bodygraph/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:            ":memory:", // Use in-memory database for example
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_CreateChart archives a chart and reads it back.
func ExampleSQLiteStore_CreateChart() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	chart := &stores.ChartRecord{
		ID:           "chart-001",
		Label:        "Ada",
		BirthInstant: time.Date(1984, 1, 11, 12, 0, 0, 0, time.UTC),
		Timezone:     "Europe/London",
		Type:         "Generator",
		Profile:      "1/3",
		Snapshot:     `{}`,
	}
	if err := store.CreateChart(ctx, chart); err != nil {
		log.Fatal(err)
	}

	got, err := store.GetChart(ctx, "chart-001")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(got.Label, got.Type, got.Profile)

	_, err = store.GetChart(ctx, "missing")
	fmt.Println(errors.Is(err, stores.ErrNotFound))
	// Output:
	// Ada Generator 1/3
	// true
}

// ExampleSQLiteStore_AppendEvent records an event for a chart.
func ExampleSQLiteStore_AppendEvent() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	chartID := "chart-001"
	_ = store.AppendEvent(ctx, &stores.ChartEvent{
		ChartID: &chartID,
		Type:    "chart.computed",
		Level:   stores.EventLevelInfo,
		Message: "chart computed",
	})

	events, _ := store.ListEvents(ctx, &chartID, 10, 0)
	fmt.Println(len(events), events[0].Type)
	// Output: 1 chart.computed
}
