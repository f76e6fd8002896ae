package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-countries-backend/internal/domain"
)

func TestSeedRefreshMetadata_IsIdempotent(t *testing.T) {
	db := newCountryDB(t, &domain.RefreshMetadata{})

	if err := SeedRefreshMetadata(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	first, err := GetGlobalRefreshedAt(context.Background(), db)
	if err != nil {
		t.Fatalf("read after seed: %v", err)
	}

	// A second seed must not overwrite the existing row.
	if err := SeedRefreshMetadata(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	second, err := GetGlobalRefreshedAt(context.Background(), db)
	if err != nil {
		t.Fatalf("read after reseed: %v", err)
	}
	if !second.Equal(first) {
		t.Fatalf("reseed changed the timestamp: %v -> %v", first, second)
	}

	var count int64
	if err := db.Model(&domain.RefreshMetadata{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one metadata row, got %d", count)
	}
}

func TestSetGlobalRefreshedAt_RoundTrip(t *testing.T) {
	db := newCountryDB(t, &domain.RefreshMetadata{})
	if err := SeedRefreshMetadata(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	want := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	if err := SetGlobalRefreshedAt(context.Background(), db, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := GetGlobalRefreshedAt(context.Background(), db)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSetGlobalRefreshedAt_WithoutSeedReturnsNotFound(t *testing.T) {
	db := newCountryDB(t, &domain.RefreshMetadata{})

	err := SetGlobalRefreshedAt(context.Background(), db, time.Now().UTC())
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetGlobalRefreshedAt_WithoutSeed(t *testing.T) {
	db := newCountryDB(t, &domain.RefreshMetadata{})

	if _, err := GetGlobalRefreshedAt(context.Background(), db); err == nil {
		t.Fatal("expected an error for a missing metadata row")
	}
}
