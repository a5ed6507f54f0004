package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisdamba/tripdata/internal/models"
)

func testConfig() *models.Config {
	return &models.Config{
		ShowProgress:    false,
		DownloadRetries: 2,
		CacheEnabled:    true,
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trips.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	l := New(testConfig(), nil)
	table, err := l.Load(context.Background(), writeSample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("expected 3 records, got %d", table.Len())
	}
}

func TestLoadFileMissing(t *testing.T) {
	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	var srcErr *models.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
}

func TestLoadFileUsesCacheUntilModified(t *testing.T) {
	cache := NewMemoryCache()
	l := New(testConfig(), cache)
	path := writeSample(t)

	first, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("unchanged file should be served from the cache")
	}
}

func TestLoadRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := w.Write([]byte(sampleCSV)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	cache := NewMemoryCache()
	l := New(testConfig(), cache)

	first, err := l.Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Len() != 3 {
		t.Errorf("expected 3 records, got %d", first.Len())
	}

	second, err := l.Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("same ETag should be served from the cache")
	}
}

func TestLoadRemoteRetriesThenSucceeds(t *testing.T) {
	var gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		gets++
		if gets < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte(sampleCSV)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	l := New(testConfig(), nil)
	table, err := l.Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("expected 3 records, got %d", table.Len())
	}
	if gets != 2 {
		t.Errorf("expected 2 GETs, got %d", gets)
	}
}

func TestLoadRemoteExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.DownloadRetries = 1
	l := New(cfg, nil)

	_, err := l.Load(context.Background(), server.URL)
	var srcErr *models.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if srcErr.Source != server.URL {
		t.Errorf("SourceError source: %q", srcErr.Source)
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	table := models.NewTripTable(nil, nil)

	if _, ok := cache.Get("k"); ok {
		t.Error("empty cache should miss")
	}
	cache.Put("k", table)
	got, ok := cache.Get("k")
	if !ok || got != table {
		t.Error("cache should return the stored table")
	}
	cache.Invalidate("k")
	if _, ok := cache.Get("k"); ok {
		t.Error("invalidated key should miss")
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := parseS3URI("s3://my-bucket/data/trips.csv")
	if err != nil {
		t.Fatalf("parseS3URI: %v", err)
	}
	if bucket != "my-bucket" || key != "data/trips.csv" {
		t.Errorf("got %q %q", bucket, key)
	}
	if _, _, err := parseS3URI("s3://only-bucket"); err == nil {
		t.Error("expected error for uri without key")
	}
}
