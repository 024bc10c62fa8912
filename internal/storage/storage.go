// Package storage mirrors binary assets (team/player/league images) into
// S3-compatible object storage and hands out stable public URLs.
//
// The mirror path is deduplicated: callers check Exists before transferring,
// and Upload itself is overwrite-idempotent, so a lost race between
// concurrent runs costs a duplicate transfer but never corrupts state.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/golexhq/golex-data/internal/config"
)

// Uploaded objects are immutable images; cache them for a year.
const cacheControl = "public, max-age=31536000"

const downloadTimeout = 30 * time.Second

// requestTimeout bounds every S3 API call end to end, including the body
// transfer of an upload.
const requestTimeout = 60 * time.Second

// objectAPI is the subset of the S3 client the mirror uses. Narrowed for
// testability.
type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Client is the object-storage asset mirror. Safe for concurrent use.
type Client struct {
	api        objectAPI
	httpClient *http.Client
	bucket     string
	publicBase string
	logger     *slog.Logger
}

// New creates a storage client against an R2/S3-compatible endpoint using
// static credentials and path-style addressing.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.StorageEndpoint == "" || cfg.StorageAccessKey == "" || cfg.StorageSecretKey == "" {
		return nil, fmt.Errorf("storage credentials are not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"), // R2 uses the literal "auto" region
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		),
		awsconfig.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	return &Client{
		api:        api,
		httpClient: &http.Client{Timeout: downloadTimeout},
		bucket:     cfg.StorageBucket,
		publicBase: strings.TrimRight(cfg.StoragePublicURL, "/"),
		logger:     logger,
	}, nil
}

// NewWithAPI creates a client around an existing object API. Used in tests.
func NewWithAPI(api objectAPI, httpClient *http.Client, bucket, publicBase string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Client{
		api:        api,
		httpClient: httpClient,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}
}

// Exists reports whether an object is already present under key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) || strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	return true, nil
}

// Upload writes data under key and returns the public URL. Content type is
// sniffed from the bytes when not provided. Overwrites are allowed: a
// re-upload of the same key converges to the same object.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	c.logger.Info("Uploaded object", "key", key, "bytes", len(data), "content_type", contentType)
	return c.PublicURL(key), nil
}

// MirrorFromURL downloads srcURL with a bounded timeout and uploads the
// bytes under key. Content type comes from the response header when set.
func (c *Client) MirrorFromURL(ctx context.Context, srcURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", srcURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", srcURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read download body: %w", err)
	}

	return c.Upload(ctx, key, data, resp.Header.Get("Content-Type"))
}

// Delete removes an object. Returns false (not an error) when the delete
// could not be performed.
func (c *Client) Delete(ctx context.Context, key string) bool {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error("Delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// PublicURL joins the public base URL with an object key.
func (c *Client) PublicURL(key string) string {
	return c.publicBase + "/" + key
}

// --------------------------------------------------------------------------
// Key layout + dedup helpers
// --------------------------------------------------------------------------

// TeamLogoKey returns the canonical storage key for a team logo.
func TeamLogoKey(teamID string) string { return "teams/" + teamID + ".png" }

// PlayerPhotoKey returns the canonical storage key for a player photo.
func PlayerPhotoKey(playerID string) string { return "players/" + playerID + ".png" }

// LeagueLogoKey returns the canonical storage key for a league logo.
func LeagueLogoKey(leagueID string) string { return "leagues/" + leagueID + ".png" }

// MirrorTeamLogo mirrors a team logo unless it is already stored. The
// existence check is not atomic against concurrent callers; because Upload
// is overwrite-idempotent, a lost race only wastes one transfer.
func (c *Client) MirrorTeamLogo(ctx context.Context, teamID, srcURL string) (string, error) {
	return c.mirrorDedup(ctx, TeamLogoKey(teamID), srcURL)
}

// MirrorPlayerPhoto mirrors a player photo unless it is already stored.
func (c *Client) MirrorPlayerPhoto(ctx context.Context, playerID, srcURL string) (string, error) {
	return c.mirrorDedup(ctx, PlayerPhotoKey(playerID), srcURL)
}

// MirrorLeagueLogo mirrors a league logo unless it is already stored.
func (c *Client) MirrorLeagueLogo(ctx context.Context, leagueID, srcURL string) (string, error) {
	return c.mirrorDedup(ctx, LeagueLogoKey(leagueID), srcURL)
}

func (c *Client) mirrorDedup(ctx context.Context, key, srcURL string) (string, error) {
	ok, err := c.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		c.logger.Info("Object already mirrored, skipping", "key", key)
		return c.PublicURL(key), nil
	}
	return c.MirrorFromURL(ctx, srcURL, key)
}
