package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxThumbnailBytes caps the downloaded preview image.
const maxThumbnailBytes = 5 << 20

var ogImagePattern = regexp.MustCompile(`<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']|<meta[^>]+content=["']([^"']+)["'][^>]+property=["']og:image["']`)

// ThumbnailService fetches a page's og:image and caches it in the storage
// bucket. It implements Thumbnailer.
type ThumbnailService struct {
	client    *http.Client
	s3        *s3.Client
	bucket    string
	publicURL string
	logger    zerolog.Logger
}

// NewThumbnailService creates a new ThumbnailService with a scoped logger.
// publicURL is the base the bucket is served from.
func NewThumbnailService(s3Client *s3.Client, bucket, publicURL string, logger zerolog.Logger) *ThumbnailService {
	return &ThumbnailService{
		client:    &http.Client{Timeout: 10 * time.Second},
		s3:        s3Client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger.With().Str("service", "ThumbnailService").Logger(),
	}
}

// Capture scrapes the page for an og:image, downloads it and stores a copy
// in the bucket. A page without an og:image yields nil values, not an error.
func (s *ThumbnailService) Capture(ctx context.Context, pageURL string) (*string, *string, error) {
	imageURL, err := s.findOGImage(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	if imageURL == "" {
		return nil, nil, nil
	}

	data, contentType, err := s.download(ctx, imageURL)
	if err != nil {
		return nil, nil, err
	}

	key := "links/" + uuid.NewString() + extensionFor(contentType, imageURL)
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("store thumbnail: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
	return &publicURL, &key, nil
}

func (s *ThumbnailService) findOGImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; viralio-bot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	// The og:image tag lives in <head>; a bounded read is enough.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return "", err
	}
	m := ogImagePattern.FindSubmatch(body)
	if m == nil {
		return "", nil
	}
	if len(m[1]) > 0 {
		return string(m[1]), nil
	}
	return string(m[2]), nil
}

func (s *ThumbnailService) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

func extensionFor(contentType, imageURL string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	}
	if ext := path.Ext(imageURL); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}
