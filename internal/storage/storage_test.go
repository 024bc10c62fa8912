package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectAPI is a mock of the objectAPI interface.
type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	var out *s3.HeadObjectOutput
	if v := args.Get(0); v != nil {
		out = v.(*s3.HeadObjectOutput)
	}
	return out, args.Error(1)
}

func (m *MockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	var out *s3.PutObjectOutput
	if v := args.Get(0); v != nil {
		out = v.(*s3.PutObjectOutput)
	}
	return out, args.Error(1)
}

func (m *MockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	var out *s3.DeleteObjectOutput
	if v := args.Get(0); v != nil {
		out = v.(*s3.DeleteObjectOutput)
	}
	return out, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Minimal valid PNG header; enough for content sniffing.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestExists(t *testing.T) {
	ctx := context.Background()

	t.Run("present object", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadObject", ctx, mock.Anything).Return(&s3.HeadObjectOutput{}, nil).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		ok, err := c.Exists(ctx, "teams/40.png")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotFound maps to false without error", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadObject", ctx, mock.Anything).Return(nil, &types.NotFound{}).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		ok, err := c.Exists(ctx, "teams/40.png")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadObject", ctx, mock.Anything).Return(nil, errors.New("access denied")).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		_, err := c.Exists(ctx, "teams/40.png")

		assert.Error(t, err)
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("sets bucket, cache control, and explicit content type", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Bucket == "golex-assets" &&
				*in.Key == "teams/40.png" &&
				*in.ContentType == "image/png" &&
				*in.CacheControl == "public, max-age=31536000"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app/", testLogger())
		url, err := c.Upload(ctx, "teams/40.png", pngBytes, "image/png")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.golex.app/teams/40.png", url)
		api.AssertExpectations(t)
	})

	t.Run("sniffs content type from bytes when missing", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.ContentType == "image/png"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		_, err := c.Upload(ctx, "teams/40.png", pngBytes, "")

		require.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("put failure propagates", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("slow down")).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		_, err := c.Upload(ctx, "teams/40.png", pngBytes, "image/png")

		assert.Error(t, err)
	})
}

func TestMirrorFromURL(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads and uploads with the response content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes)
		}))
		defer srv.Close()

		api := new(MockObjectAPI)
		api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Key == "teams/40.png" && *in.ContentType == "image/png"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		c := NewWithAPI(api, srv.Client(), "golex-assets", "https://cdn.golex.app", testLogger())
		url, err := c.MirrorFromURL(ctx, srv.URL+"/logo.png", "teams/40.png")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.golex.app/teams/40.png", url)
		api.AssertExpectations(t)
	})

	t.Run("non-200 download fails without uploading", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		api := new(MockObjectAPI)
		c := NewWithAPI(api, srv.Client(), "golex-assets", "https://cdn.golex.app", testLogger())

		_, err := c.MirrorFromURL(ctx, srv.URL+"/missing.png", "teams/40.png")

		assert.Error(t, err)
		api.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	})
}

func TestMirrorTeamLogo(t *testing.T) {
	ctx := context.Background()

	t.Run("skips the transfer when the object is already stored", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadObject", ctx, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
			return *in.Key == "teams/40.png"
		})).Return(&s3.HeadObjectOutput{}, nil).Once()

		c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
		url, err := c.MirrorTeamLogo(ctx, "40", "https://media.api-sports.io/football/teams/40.png")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.golex.app/teams/40.png", url)
		api.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	})

	t.Run("mirrors when the object is absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(pngBytes)
		}))
		defer srv.Close()

		api := new(MockObjectAPI)
		api.On("HeadObject", ctx, mock.Anything).Return(nil, &types.NotFound{}).Once()
		api.On("PutObject", ctx, mock.Anything).Return(&s3.PutObjectOutput{}, nil).Once()

		c := NewWithAPI(api, srv.Client(), "golex-assets", "https://cdn.golex.app", testLogger())
		url, err := c.MirrorTeamLogo(ctx, "40", srv.URL+"/40.png")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.golex.app/teams/40.png", url)
		api.AssertExpectations(t)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	api := new(MockObjectAPI)
	api.On("DeleteObject", ctx, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil).Once()
	c := NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
	assert.True(t, c.Delete(ctx, "health/probe.txt"))

	api = new(MockObjectAPI)
	api.On("DeleteObject", ctx, mock.Anything).Return(nil, errors.New("access denied")).Once()
	c = NewWithAPI(api, nil, "golex-assets", "https://cdn.golex.app", testLogger())
	assert.False(t, c.Delete(ctx, "health/probe.txt"))
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "teams/40.png", TeamLogoKey("40"))
	assert.Equal(t, "players/276.png", PlayerPhotoKey("276"))
	assert.Equal(t, "leagues/39.png", LeagueLogoKey("39"))
}
