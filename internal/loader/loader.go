package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Loader reads the joined trip/weather CSV from a local file, an http(s)
// URL or an s3:// URI, once, before the pipeline runs. All I/O lives here;
// the pipeline itself never touches the network or the filesystem.
type Loader struct {
	cfg    *models.Config
	cache  Cache
	client *http.Client
}

func New(cfg *models.Config, cache Cache) *Loader {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Loader{
		cfg:    cfg,
		cache:  cache,
		client: &http.Client{Timeout: timeout},
	}
}

func (l *Loader) Load(ctx context.Context, source string) (*models.TripTable, error) {
	var table *models.TripTable
	var err error
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		table, err = l.loadRemote(ctx, source)
	case strings.HasPrefix(source, "s3://"):
		table, err = l.loadS3(ctx, source)
	default:
		table, err = l.loadFile(source)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d rows from %s (%d skipped)", table.Len(), source, table.SkippedRows)
	return table, nil
}

func (l *Loader) loadFile(path string) (*models.TripTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &models.SourceError{Source: path, Reason: "cannot stat file", Err: err}
	}

	key := fmt.Sprintf("file|%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if table, ok := l.cached(key); ok {
		return table, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &models.SourceError{Source: path, Reason: "cannot open file", Err: err}
	}
	defer file.Close()

	table, err := parseTrips(l.progressReader(file, info.Size()))
	if err != nil {
		return nil, tagSource(err, path)
	}

	l.store(key, table)
	return table, nil
}

func (l *Loader) loadRemote(ctx context.Context, url string) (*models.TripTable, error) {
	key := l.remoteCacheKey(ctx, url)
	if table, ok := l.cached(key); ok {
		return table, nil
	}

	retries := l.cfg.DownloadRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying download of %s (attempt %d/%d)", url, attempt+1, retries+1)
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		table, err := l.fetch(ctx, url)
		if err == nil {
			l.store(key, table)
			return table, nil
		}
		lastErr = err

		// A structurally bad payload will not improve on retry.
		var srcErr *models.SourceError
		if errors.As(err, &srcErr) && srcErr.Err == nil {
			break
		}
	}
	return nil, tagSource(lastErr, url)
}

func (l *Loader) fetch(ctx context.Context, url string) (*models.TripTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.SourceError{Source: url, Reason: "invalid request", Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &models.SourceError{Source: url, Reason: "download failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.SourceError{
			Source: url,
			Reason: fmt.Sprintf("unexpected http status %d", resp.StatusCode),
			Err:    fmt.Errorf("status %s", resp.Status),
		}
	}

	return parseTrips(l.progressReader(resp.Body, resp.ContentLength))
}

// remoteCacheKey derives a cache key from the URL plus its validator
// (ETag, falling back to Last-Modified). When the HEAD request fails the
// cache is bypassed rather than risking a stale table.
func (l *Loader) remoteCacheKey(ctx context.Context, url string) string {
	if l.cache == nil {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return ""
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	validator := resp.Header.Get("ETag")
	if validator == "" {
		validator = resp.Header.Get("Last-Modified")
	}
	if validator == "" {
		return ""
	}
	return fmt.Sprintf("url|%s|%s", url, validator)
}

func (l *Loader) loadS3(ctx context.Context, uri string) (*models.TripTable, error) {
	bucket, objectKey, err := parseS3URI(uri)
	if err != nil {
		return nil, &models.SourceError{Source: uri, Reason: "invalid s3 uri", Err: err}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(l.cfg.CloudStorage.Region))
	if err != nil {
		return nil, &models.SourceError{Source: uri, Reason: "unable to load SDK config", Err: err}
	}
	client := s3.NewFromConfig(awsCfg)

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, &models.SourceError{Source: uri, Reason: "object not accessible", Err: err}
	}

	var cacheKey string
	if head.ETag != nil {
		cacheKey = fmt.Sprintf("s3|%s|%s", uri, *head.ETag)
		if table, ok := l.cached(cacheKey); ok {
			return table, nil
		}
	}

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, &models.SourceError{Source: uri, Reason: "download failed", Err: err}
	}
	defer obj.Body.Close()

	size := int64(-1)
	if obj.ContentLength != nil {
		size = *obj.ContentLength
	}

	table, err := parseTrips(l.progressReader(obj.Body, size))
	if err != nil {
		return nil, tagSource(err, uri)
	}

	l.store(cacheKey, table)
	return table, nil
}

func parseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected s3://bucket/key, got %s", uri)
	}
	return parts[0], parts[1], nil
}

func (l *Loader) progressReader(r io.Reader, size int64) io.Reader {
	if !l.cfg.ShowProgress {
		return r
	}
	bar := progressbar.DefaultBytes(size, "loading trips")
	return io.TeeReader(r, bar)
}

func (l *Loader) cached(key string) (*models.TripTable, bool) {
	if l.cache == nil || key == "" {
		return nil, false
	}
	table, ok := l.cache.Get(key)
	if ok {
		log.Printf("Using cached trip table (%d rows)", table.Len())
	}
	return table, ok
}

func (l *Loader) store(key string, table *models.TripTable) {
	if l.cache == nil || key == "" {
		return
	}
	l.cache.Put(key, table)
}

func tagSource(err error, source string) error {
	var srcErr *models.SourceError
	if errors.As(err, &srcErr) && srcErr.Source == "" {
		srcErr.Source = source
	}
	return err
}
