package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
)

func TestPatternStore_UpsertAndGet(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())
	ctx := context.Background()

	pattern := &models.DetectedPattern{
		PatternType: models.PatternTypeSweep,
		Ticker:      "NVDA",
		Name:        "Sweep cluster",
		Description: "Repeated sweeps above the premium floor",
		Conditions:  map[string]interface{}{"min_premium": 100000.0},
		Occurrences: 2,
	}

	if err := store.Upsert(ctx, "trader-1", pattern); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "trader-1", "NVDA", models.PatternTypeSweep)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected pattern, got nil")
	}

	if got.ID != "trader-1_NVDA_sweep" {
		t.Errorf("expected id trader-1_NVDA_sweep, got %s", got.ID)
	}
	if got.UserID != "trader-1" {
		t.Errorf("expected user trader-1, got %s", got.UserID)
	}
	if got.Occurrences != 2 {
		t.Errorf("expected 2 occurrences, got %d", got.Occurrences)
	}
	if got.Name != "Sweep cluster" {
		t.Errorf("expected name Sweep cluster, got %s", got.Name)
	}
	if v, ok := got.Conditions["min_premium"].(float64); !ok || v != 100000.0 {
		t.Errorf("expected min_premium condition 100000, got %v", got.Conditions["min_premium"])
	}
	if got.FirstSeen.IsZero() || got.LastSeen.IsZero() || got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected all timestamps to be set")
	}
	if !got.FirstSeen.Equal(got.LastSeen) {
		t.Errorf("expected first_seen == last_seen on first detection, got %v vs %v", got.FirstSeen, got.LastSeen)
	}
}

func TestPatternStore_Upsert_AccumulatesOccurrences(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())
	ctx := context.Background()

	first := &models.DetectedPattern{
		PatternType: models.PatternTypeBlock,
		Ticker:      "TSLA",
		Name:        "Block prints",
		Description: "initial run",
		Occurrences: 2,
	}
	if err := store.Upsert(ctx, "trader-1", first); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	before, err := store.Get(ctx, "trader-1", "TSLA", models.PatternTypeBlock)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	second := &models.DetectedPattern{
		PatternType: models.PatternTypeBlock,
		Ticker:      "TSLA",
		Name:        "Block prints",
		Description: "later run",
		Occurrences: 3,
	}
	if err := store.Upsert(ctx, "trader-1", second); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "trader-1", "TSLA", models.PatternTypeBlock)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Occurrences != 5 {
		t.Errorf("expected occurrences to accumulate to 5, got %d", got.Occurrences)
	}
	if got.Description != "later run" {
		t.Errorf("expected description to be replaced, got %s", got.Description)
	}
	if !got.FirstSeen.Equal(before.FirstSeen) {
		t.Errorf("expected first_seen to be preserved, got %v vs %v", got.FirstSeen, before.FirstSeen)
	}
	if !got.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("expected created_at to be preserved, got %v vs %v", got.CreatedAt, before.CreatedAt)
	}
	if !got.LastSeen.After(before.LastSeen) {
		t.Errorf("expected last_seen to advance, got %v vs %v", got.LastSeen, before.LastSeen)
	}
}

func TestPatternStore_Upsert_FloorsOccurrences(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())
	ctx := context.Background()

	pattern := &models.DetectedPattern{
		PatternType: models.PatternTypeSweep,
		Ticker:      "AAPL",
		Name:        "Sweep cluster",
		Occurrences: 0,
	}
	if err := store.Upsert(ctx, "trader-1", pattern); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := store.Get(ctx, "trader-1", "AAPL", models.PatternTypeSweep)
	if got == nil {
		t.Fatal("expected pattern, got nil")
	}
	if got.Occurrences != 1 {
		t.Errorf("expected occurrences to floor at 1, got %d", got.Occurrences)
	}
}

func TestPatternStore_Get_Missing(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())

	got, err := store.Get(context.Background(), "trader-1", "NOPE", models.PatternTypeSweep)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing pattern, got %+v", got)
	}
}

func TestPatternStore_List(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())
	ctx := context.Background()

	store.Upsert(ctx, "trader-1", &models.DetectedPattern{PatternType: models.PatternTypeSweep, Ticker: "NVDA", Name: "Sweep cluster", Occurrences: 1})
	store.Upsert(ctx, "trader-1", &models.DetectedPattern{PatternType: models.PatternTypeBlock, Ticker: "NVDA", Name: "Block prints", Occurrences: 1})
	store.Upsert(ctx, "trader-1", &models.DetectedPattern{PatternType: models.PatternTypeSweep, Ticker: "TSLA", Name: "Sweep cluster", Occurrences: 1})

	all, err := store.List(ctx, "trader-1", interfaces.PatternListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 patterns, got %d", len(all))
	}

	// Most recently seen first
	if all[0].Ticker != "TSLA" {
		t.Errorf("expected most recent pattern first, got %s", all[0].Ticker)
	}

	nvda, err := store.List(ctx, "trader-1", interfaces.PatternListOptions{Ticker: "NVDA"})
	if err != nil {
		t.Fatalf("List by ticker failed: %v", err)
	}
	if len(nvda) != 2 {
		t.Errorf("expected 2 NVDA patterns, got %d", len(nvda))
	}

	sweeps, err := store.List(ctx, "trader-1", interfaces.PatternListOptions{PatternType: models.PatternTypeSweep})
	if err != nil {
		t.Fatalf("List by type failed: %v", err)
	}
	if len(sweeps) != 2 {
		t.Errorf("expected 2 sweep patterns, got %d", len(sweeps))
	}

	both, err := store.List(ctx, "trader-1", interfaces.PatternListOptions{Ticker: "TSLA", PatternType: models.PatternTypeSweep})
	if err != nil {
		t.Fatalf("List by ticker and type failed: %v", err)
	}
	if len(both) != 1 {
		t.Errorf("expected 1 pattern, got %d", len(both))
	}
}

func TestPatternStore_List_UserScoping(t *testing.T) {
	db := testDB(t)
	store := NewPatternStore(db, testLogger())
	ctx := context.Background()

	store.Upsert(ctx, "trader-1", &models.DetectedPattern{PatternType: models.PatternTypeSweep, Ticker: "NVDA", Name: "mine", Occurrences: 1})
	store.Upsert(ctx, "trader-2", &models.DetectedPattern{PatternType: models.PatternTypeSweep, Ticker: "NVDA", Name: "theirs", Occurrences: 1})

	items, err := store.List(ctx, "trader-1", interfaces.PatternListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(items))
	}
	if items[0].Name != "mine" {
		t.Errorf("expected own pattern, got %s", items[0].Name)
	}
}
