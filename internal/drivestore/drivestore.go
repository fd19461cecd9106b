// Package drivestore is the Google Drive collaborator: it fetches the
// events CSV, indexes the per-camera photo tree, resolves (camera, filename)
// pairs to file references and downloads photo bytes.
package drivestore

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tphakala/ranchcam-go/internal/errors"
	"github.com/tphakala/ranchcam-go/internal/logging"
	"github.com/tphakala/ranchcam-go/internal/observability"
)

// Package-level logger specific to the drivestore service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "drivestore.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "drivestore", serviceLevelVar)
	if err != nil {
		// Fallback: disable service file logging rather than failing startup
		log.Printf("FATAL: Failed to initialize drivestore file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "drivestore")
		closeLogger = func() error { return nil }
	}
}

const (
	csvCacheKey   = "events-csv"
	indexCacheKey = "image-index"
)

// FileRef identifies a specific remote photo.
type FileRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ViewURL string `json:"view_url"`
}

// CSVFile is the downloaded events table plus its Drive metadata.
type CSVFile struct {
	Name         string
	ModifiedTime time.Time
	Size         int64
	Data         []byte
}

// ImageIndex maps camera name to filename to file reference.
type ImageIndex map[string]map[string]FileRef

// Config holds the Drive client configuration.
type Config struct {
	CredentialsFile string        // service account JSON key path
	CredentialsJSON string        // inline service account JSON, alternative to the file
	EventsFileID    string        // Drive file ID of the events CSV
	RootFolderID    string        // folder containing per-camera photo folders
	CacheTTL        time.Duration // TTL for CSV and index caches
	Timeout         time.Duration // per-request timeout
	RateLimitMS     int           // minimum milliseconds between Drive requests
}

// DefaultConfig returns the default Drive client configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:    6 * time.Hour,
		Timeout:     30 * time.Second,
		RateLimitMS: 100,
	}
}

// Store is the interface the rest of the application needs from the
// storage collaborator.
type Store interface {
	FetchEventsCSV(ctx context.Context) (*CSVFile, error)
	ImageIndex(ctx context.Context) (ImageIndex, error)
	ResolveFile(ctx context.Context, camera, filename string) (FileRef, bool)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Client provides access to the Drive file tree holding events and photos.
type Client struct {
	config  Config
	svc     *drive.Service
	cache   *cache.Cache
	limiter *rate.Limiter
	metrics *observability.Metrics

	stats struct {
		apiCalls    int64
		cacheHits   int64
		cacheMisses int64
		apiErrors   int64
		mu          sync.RWMutex
	}
}

// compile-time interface check
var _ Store = (*Client)(nil)

// NewClient creates a new Drive client. The metrics argument may be nil.
// Additional client options are appended after the credentials, so tests
// can inject an HTTP client.
func NewClient(ctx context.Context, config Config, metrics *observability.Metrics, opts ...option.ClientOption) (*Client, error) {
	if config.EventsFileID == "" {
		return nil, errors.Newf("events file ID is required").
			Category(errors.CategoryConfiguration).
			Component("drivestore").
			Build()
	}
	if config.RootFolderID == "" {
		return nil, errors.Newf("root folder ID is required").
			Category(errors.CategoryConfiguration).
			Component("drivestore").
			Build()
	}
	if config.CredentialsFile != "" && config.CredentialsJSON != "" {
		return nil, errors.Newf("credentials file and inline credentials JSON are mutually exclusive").
			Category(errors.CategoryConfiguration).
			Component("drivestore").
			Build()
	}

	defaults := DefaultConfig()
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = defaults.RateLimitMS
	}

	var clientOpts []option.ClientOption
	switch {
	case config.CredentialsJSON != "":
		clientOpts = append(clientOpts,
			option.WithCredentialsJSON([]byte(config.CredentialsJSON)),
			option.WithScopes(drive.DriveReadonlyScope))
	case config.CredentialsFile != "":
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(config.CredentialsFile),
			option.WithScopes(drive.DriveReadonlyScope))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Component("drivestore").
			Context("operation", "new-drive-service").
			Build()
	}

	client := &Client{
		config:  config,
		svc:     svc,
		cache:   cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter: rate.NewLimiter(rate.Every(time.Duration(config.RateLimitMS)*time.Millisecond), 1),
		metrics: metrics,
	}

	logger.Info("Drive client initialized",
		"events_file_id", config.EventsFileID,
		"root_folder_id", config.RootFolderID,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS)

	return client, nil
}

// Close releases client resources.
func (c *Client) Close() {
	logger.Info("Closing Drive client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing drivestore logger: %v", err)
		}
	}
}

// FetchEventsCSV downloads the events CSV and its metadata, serving from
// cache within the TTL.
func (c *Client) FetchEventsCSV(ctx context.Context) (*CSVFile, error) {
	if cached, found := c.cache.Get(csvCacheKey); found {
		if f, ok := cached.(*CSVFile); ok {
			c.recordCache("csv", "hit")
			logger.Debug("events CSV cache hit", "name", f.Name, "size", f.Size)
			return f, nil
		}
	}
	c.recordCache("csv", "miss")

	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}
	meta, err := c.svc.Files.Get(c.config.EventsFileID).
		Fields("name, modifiedTime, size").
		Context(ctx).Do()
	if err != nil {
		c.recordRequest("get-csv-metadata", "error")
		return nil, errors.New(err).
			Category(errors.CategoryDriveAPI).
			Component("drivestore").
			Context("operation", "get-csv-metadata").
			Build()
	}
	c.recordRequest("get-csv-metadata", "success")

	data, err := c.Download(ctx, c.config.EventsFileID)
	if err != nil {
		return nil, err
	}

	modified, _ := time.Parse(time.RFC3339, meta.ModifiedTime)
	f := &CSVFile{
		Name:         meta.Name,
		ModifiedTime: modified,
		Size:         meta.Size,
		Data:         data,
	}
	c.cache.Set(csvCacheKey, f, cache.DefaultExpiration)

	logger.Info("events CSV fetched",
		"name", f.Name,
		"modified", meta.ModifiedTime,
		"bytes", len(data))
	return f, nil
}

// ImageIndex lists the camera folders under the root folder and indexes
// every image file within each, serving from cache within the TTL. Camera
// folders are indexed concurrently.
func (c *Client) ImageIndex(ctx context.Context) (ImageIndex, error) {
	if cached, found := c.cache.Get(indexCacheKey); found {
		if idx, ok := cached.(ImageIndex); ok {
			c.recordCache("index", "hit")
			return idx, nil
		}
	}
	c.recordCache("index", "miss")

	folders, err := c.listCameraFolders(ctx)
	if err != nil {
		return nil, err
	}

	index := make(ImageIndex, len(folders))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for name, folderID := range folders {
		name, folderID := name, folderID
		g.Go(func() error {
			files, err := c.listImages(gctx, folderID)
			if err != nil {
				return err
			}
			mu.Lock()
			index[name] = files
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.cache.Set(indexCacheKey, index, cache.DefaultExpiration)

	total := 0
	for _, files := range index {
		total += len(files)
	}
	logger.Info("photo index built", "cameras", len(index), "files", total)
	return index, nil
}

// ResolveFile resolves a (camera, filename) pair to a file reference with a
// case-sensitive exact match. A miss is not an error; it reports found=false.
func (c *Client) ResolveFile(ctx context.Context, camera, filename string) (FileRef, bool) {
	camera = strings.TrimSpace(camera)
	filename = strings.TrimSpace(filename)
	if camera == "" || filename == "" {
		return FileRef{}, false
	}

	index, err := c.ImageIndex(ctx)
	if err != nil {
		logger.Warn("photo index unavailable during resolve", "error", err)
		return FileRef{}, false
	}

	ref, ok := index[camera][filename]
	return ref, ok
}

// Download fetches the raw bytes of a Drive file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		c.recordRequest("download", "error")
		return nil, errors.New(err).
			Category(errors.CategoryImageFetch).
			Component("drivestore").
			Context("file_id", fileID).
			Build()
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordRequest("download", "error")
		return nil, errors.New(err).
			Category(errors.CategoryImageFetch).
			Component("drivestore").
			Context("file_id", fileID).
			Build()
	}
	c.recordRequest("download", "success")
	return data, nil
}

// listCameraFolders returns the folders directly under the root folder,
// keyed by folder name.
func (c *Client) listCameraFolders(ctx context.Context) (map[string]string, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType='application/vnd.google-apps.folder' and trashed=false",
		c.config.RootFolderID)

	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1000).
		Context(ctx).Do()
	if err != nil {
		c.recordRequest("list-folders", "error")
		return nil, errors.New(err).
			Category(errors.CategoryDriveAPI).
			Component("drivestore").
			Context("operation", "list-camera-folders").
			Build()
	}
	c.recordRequest("list-folders", "success")

	out := make(map[string]string, len(resp.Files))
	for _, f := range resp.Files {
		name := strings.TrimSpace(f.Name)
		if name == "" || f.Id == "" {
			continue
		}
		out[name] = f.Id
	}
	return out, nil
}

// listImages pages through one camera folder and returns its image files
// keyed by filename.
func (c *Client) listImages(ctx context.Context, folderID string) (map[string]FileRef, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	out := make(map[string]FileRef)
	pageToken := ""
	for {
		if err := c.waitForSlot(ctx); err != nil {
			return nil, err
		}
		call := c.svc.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name, mimeType, webViewLink)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			c.recordRequest("list-files", "error")
			return nil, errors.New(err).
				Category(errors.CategoryDriveAPI).
				Component("drivestore").
				Context("operation", "list-images").
				Build()
		}
		c.recordRequest("list-files", "success")

		for _, f := range resp.Files {
			name := strings.TrimSpace(f.Name)
			if name == "" || f.Id == "" {
				continue
			}
			if !isImageFile(f.MimeType, name) {
				continue
			}
			viewURL := strings.TrimSpace(f.WebViewLink)
			if viewURL == "" {
				viewURL = ViewURL(f.Id)
			}
			out[name] = FileRef{ID: f.Id, Name: name, ViewURL: viewURL}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return out, nil
}

// ViewURL returns the browser URL for a Drive file.
func ViewURL(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/view"
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

func isImageFile(mimeType, name string) bool {
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// waitForSlot blocks until the rate limiter admits another Drive request.
func (c *Client) waitForSlot(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.New(err).
			Category(errors.CategoryNetwork).
			Component("drivestore").
			Context("operation", "rate-limit-wait").
			Build()
	}
	return nil
}

// recordRequest counts one Drive API request in the local stats and the
// shared prometheus registry.
func (c *Client) recordRequest(operation, status string) {
	c.stats.mu.Lock()
	c.stats.apiCalls++
	if status != "success" {
		c.stats.apiErrors++
	}
	c.stats.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DriveRequestsTotal.WithLabelValues(operation, status).Inc()
	}
}

func (c *Client) recordCache(cacheName, outcome string) {
	c.stats.mu.Lock()
	if outcome == "hit" {
		c.stats.cacheHits++
	} else {
		c.stats.cacheMisses++
	}
	c.stats.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DriveCacheTotal.WithLabelValues(cacheName, outcome).Inc()
	}
}

// Stats reports client counters for debugging endpoints.
func (c *Client) Stats() (apiCalls, cacheHits, cacheMisses, apiErrors int64) {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return c.stats.apiCalls, c.stats.cacheHits, c.stats.cacheMisses, c.stats.apiErrors
}
