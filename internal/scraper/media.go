package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"facebook-extractor/internal/config"
	"facebook-extractor/pkg/types"
)

const mediaFilePrefix = "facebook_media_"

var mediaExtPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{3}$`)

// MediaStore writes downloaded media and screenshots under one directory.
type MediaStore struct {
	dir string
}

func NewMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &MediaStore{dir: dir}, nil
}

func (s *MediaStore) Dir() string {
	return s.dir
}

// Save writes data to a new uniquely named file and returns its path.
func (s *MediaStore) Save(data []byte, ext string) (string, error) {
	name := filepath.Join(s.dir, mediaFilePrefix+uuid.NewString()+ext)
	if err := os.WriteFile(name, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return name, nil
}

// mediaExtension returns the extension of the URL path when it looks like a
// real one, e.g. ".mp4" or ".jpg".
func mediaExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if !mediaExtPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// MediaDownloader fetches media URLs into a MediaStore.
type MediaDownloader struct {
	client *resty.Client
	store  *MediaStore
	logger *logrus.Logger
}

func NewMediaDownloader(cfg config.MediaConfig, userAgent string, store *MediaStore, logger *logrus.Logger) *MediaDownloader {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)

	client := resty.New().
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || isTransientStatus(resp.StatusCode())
		})
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &MediaDownloader{client: client, store: store, logger: logger}
}

func (d *MediaDownloader) Retrieve(ctx context.Context, mediaURL string) (string, error) {
	resp, err := d.client.R().SetContext(ctx).Get(mediaURL)
	if err != nil {
		return "", &types.RetryableError{Op: "download media", Err: err}
	}
	if isTransientStatus(resp.StatusCode()) {
		return "", &types.RetryableError{Op: "download media", Err: fmt.Errorf("status %d", resp.StatusCode())}
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to download media %s: status %d", mediaURL, resp.StatusCode())
	}

	file, err := d.store.Save(resp.Body(), mediaExtension(mediaURL))
	if err != nil {
		return "", err
	}
	d.logger.WithFields(logrus.Fields{"file": file, "bytes": len(resp.Body())}).Debug("Downloaded media")
	return file, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
