// Package covers mirrors remote cover images into the local artifact store
// so books prefilled from a metadata lookup get a locally served cover
// instead of hotlinking an external host.
package covers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

// Fetcher downloads cover images and stores them as image artifacts.
type Fetcher struct {
	store      *uploads.Store
	httpClient *http.Client
}

func NewFetcher(store *uploads.Store) *Fetcher {
	return &Fetcher{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the image at coverURL and saves it to the store,
// returning the public path to persist on the book.
func (f *Fetcher) Fetch(ctx context.Context, coverURL string) (string, error) {
	if !strings.HasPrefix(coverURL, "http://") && !strings.HasPrefix(coverURL, "https://") {
		return "", apperror.NewValidation([]string{"coverUrl"}, []string{"cover URL must be http or https"})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return "", apperror.Wrap(apperror.KindValidation, "invalid cover URL", err)
	}
	req.Header.Set("User-Agent", "Maktaba/1.0 (library catalog)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to fetch cover", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperror.New(apperror.KindStorageIO,
			fmt.Sprintf("cover fetch failed with status %d", resp.StatusCode))
	}

	return f.store.SaveStream(uploads.KindImage, remoteFilename(coverURL, resp.Header.Get("Content-Type")),
		resp.ContentLength, resp.Body)
}

// remoteFilename derives a name with a usable image extension, falling back
// to the content type when the URL path has none.
func remoteFilename(coverURL, contentType string) string {
	name := path.Base(strings.SplitN(coverURL, "?", 2)[0])
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		for _, allowed := range uploads.AllowedExtensions(uploads.KindImage) {
			if ext == allowed {
				return name
			}
		}
	}
	switch contentType {
	case "image/png":
		return "cover.png"
	case "image/gif":
		return "cover.gif"
	default:
		return "cover.jpg"
	}
}
