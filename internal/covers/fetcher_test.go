package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

func setupFetcher(t *testing.T, maxImageSize int64) (*Fetcher, *uploads.Store) {
	t.Helper()
	store, err := uploads.NewStore(t.TempDir(), 1024, maxImageSize)
	require.NoError(t, err)
	return NewFetcher(store), store
}

func TestFetch(t *testing.T) {
	imageBody := strings.Repeat("x", 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/covers/forty-hadith.jpg":
			w.Write([]byte(imageBody))
		case "/covers/huge.jpg":
			w.Write([]byte(strings.Repeat("x", 5000)))
		case "/covers/typed":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte(imageBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("mirrors a remote cover", func(t *testing.T) {
		fetcher, store := setupFetcher(t, 512)

		publicPath, err := fetcher.Fetch(context.Background(), server.URL+"/covers/forty-hadith.jpg")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(publicPath, "/uploads/images/image-"), publicPath)
		assert.True(t, strings.HasSuffix(publicPath, ".jpg"))
		assert.True(t, store.Exists(publicPath))
	})

	t.Run("extension falls back to content type", func(t *testing.T) {
		fetcher, store := setupFetcher(t, 512)

		publicPath, err := fetcher.Fetch(context.Background(), server.URL+"/covers/typed")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(publicPath, ".png"), publicPath)
		assert.True(t, store.Exists(publicPath))
	})

	t.Run("oversized cover is rejected and not kept", func(t *testing.T) {
		fetcher, store := setupFetcher(t, 512)

		_, err := fetcher.Fetch(context.Background(), server.URL+"/covers/huge.jpg")
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindTooLarge))
		_ = store
	})

	t.Run("missing cover", func(t *testing.T) {
		fetcher, _ := setupFetcher(t, 512)

		_, err := fetcher.Fetch(context.Background(), server.URL+"/covers/nope.jpg")
		assert.True(t, apperror.IsKind(err, apperror.KindStorageIO))
	})

	t.Run("non http url", func(t *testing.T) {
		fetcher, _ := setupFetcher(t, 512)

		_, err := fetcher.Fetch(context.Background(), "ftp://example.org/cover.jpg")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}
