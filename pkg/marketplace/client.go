package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/httputil"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

const (
	// defaultQueryURL is the Gallery extensionquery endpoint.
	// Reverse engineered from: github.com/microsoft/vscode-vsce/blob/main/src/show.ts
	defaultQueryURL = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"

	// apiVersion is the Gallery API version negotiated via the Accept header.
	apiVersion = "3.0-preview.1"

	// vsixAssetName is the asset holding the installable VSIX package.
	vsixAssetName = "Microsoft.VisualStudio.Services.VSIXPackage"
)

// Client queries the Gallery API for extension versions and streams VSIX
// assets. The zero value is not usable; construct with [NewClient].
type Client struct {
	http     *http.Client
	cache    *httputil.Cache
	queryURL string
	// assetRoot overrides the per-publisher gallery host when non-empty.
	// Tests point this at an httptest server.
	assetRoot string
}

// NewClient creates a Client whose version lookups are cached on disk with
// the given TTL. A TTL of 0 disables expiry; see [httputil.NewCache] for
// the cache location.
func NewClient(cacheTTL time.Duration) (*Client, error) {
	cache, err := httputil.NewCache("", cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:     &http.Client{Timeout: 5 * time.Minute},
		cache:    cache.Namespace("version:"),
		queryURL: defaultQueryURL,
	}, nil
}

// LatestVersion resolves the latest released version of ext via the
// extensionquery endpoint. Results are cached with the client's TTL;
// refresh bypasses the cache. A missing or empty Gallery result fails
// with REGISTRY_ERROR.
func (c *Client) LatestVersion(ctx context.Context, ext vsix.Extension, refresh bool) (string, error) {
	key := ext.String()

	var version string
	if !refresh && c.cache != nil {
		if ok, _ := c.cache.Get(key, &version); ok {
			return version, nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		version, err = c.queryLatest(ctx, ext)
		return err
	})
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		// Best effort: a failed cache write only costs a re-query next run.
		_ = c.cache.Set(key, version)
	}
	return version, nil
}

func (c *Client) queryLatest(ctx context.Context, ext vsix.Extension) (string, error) {
	payload := queryRequest{
		Filters: []queryFilter{{
			PageNumber: 1,
			PageSize:   1,
			Criteria:   []queryCriteria{{FilterType: FilterName, Value: ext.String()}},
		}},
		AssetTypes: []string{},
		Flags:      FlagIncludeLatestVersionOnly,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json;api-version="+apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "query %s", ext)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, ext); err != nil {
		return "", err
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(errors.ErrCodeRegistry, err, "decode query response for %s", ext)
	}

	if len(decoded.Results) == 0 || len(decoded.Results[0].Extensions) == 0 || len(decoded.Results[0].Extensions[0].Versions) == 0 {
		return "", errors.New(errors.ErrCodeRegistry, "no versions found for %s", ext)
	}
	return decoded.Results[0].Extensions[0].Versions[0].Version, nil
}

// Download streams the VSIX asset for ext at version into w. The response
// body is copied incrementally, never buffered whole, so large bundles are
// safe. A non-200 response fails with REGISTRY_ERROR before any bytes are
// written.
func (c *Client) Download(ctx context.Context, ext vsix.Extension, version string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.assetURL(ext, version), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "download %s", ext)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, ext); err != nil {
		return err
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "stream %s", ext)
	}
	return nil
}

// assetURL builds the download URL for the extension's VSIX asset on the
// publisher's gallery host.
func (c *Client) assetURL(ext vsix.Extension, version string) string {
	root := c.assetRoot
	if root == "" {
		root = fmt.Sprintf("https://%s.gallery.vsassets.io/_apis/public/gallery", ext.Publisher)
	}
	return fmt.Sprintf("%s/publisher/%s/extension/%s/%s/assetbyname/%s",
		root, ext.Publisher, ext.Name, version, vsixAssetName)
}

func checkStatus(code int, ext vsix.Extension) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeRegistry, "marketplace returned %d for %s", code, ext)}
	default:
		return errors.New(errors.ErrCodeRegistry, "marketplace returned %d for %s", code, ext)
	}
}
