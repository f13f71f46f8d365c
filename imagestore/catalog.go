package imagestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/sweeklys/vmadm-go/vmerrors"
)

// Catalog is the HTTP client for the remote image repository. Transient failures on
// catalog/manifest GETs are retried with capped exponential backoff — a registry blip
// should not abort an import outright.
type Catalog struct {
	RepoURL string
	Client  *http.Client
}

// NewCatalog returns a Catalog pointed at repoURL using http.DefaultClient.
func NewCatalog(repoURL string) *Catalog {
	return &Catalog{RepoURL: repoURL, Client: http.DefaultClient}
}

func (c *Catalog) getWithRetry(ctx context.Context, url string) (*http.Response, error) {
	op := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%s: server error %d", url, resp.StatusCode)
		}
		return resp, nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(5),
		backoff.WithMaxElapsedTime(30*time.Second),
	)
}

// ListRemote GETs the catalog and parses it as an array of Image.
func (c *Catalog) ListRemote(ctx context.Context) ([]Image, error) {
	resp, err := c.getWithRetry(ctx, c.RepoURL)
	if err != nil {
		return nil, vmerrors.Generic("listing remote catalog: %w", err)
	}
	defer resp.Body.Close()
	var images []Image
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		return nil, vmerrors.Generic("decoding catalog response: %w", err)
	}
	return images, nil
}

// GetRemote fetches a single manifest by UUID, per the catalog contract's
// GET <repo>/<uuid> endpoint.
func (c *Catalog) GetRemote(ctx context.Context, uuid string) (Image, error) {
	url := fmt.Sprintf("%s/%s", c.RepoURL, uuid)
	resp, err := c.getWithRetry(ctx, url)
	if err != nil {
		return Image{}, vmerrors.Generic("fetching manifest for %s: %w", uuid, err)
	}
	defer resp.Body.Close()
	var img Image
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil {
		return Image{}, vmerrors.Generic("decoding manifest for %s: %w", uuid, err)
	}
	return img, nil
}

// fetchFile GETs `<repo>/<uuid>/file` and returns its raw, still-compressed body.
func (c *Catalog) fetchFile(ctx context.Context, uuid string) (*http.Response, error) {
	url := fmt.Sprintf("%s/%s/file", c.RepoURL, uuid)
	return c.getWithRetry(ctx, url)
}
