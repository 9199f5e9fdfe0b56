// Remote catalog checker for sources that publish an HTTP package index
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sagyam/linite-sub002/internal/shared"
	"golang.org/x/time/rate"
)

// RemoteCatalog implements [AvailabilityChecker] against a source's catalog
// endpoint. A lookup is GET {endpoint}/{identifier}: 200 means the package is
// published, 404 means it is not, and any other status is treated as a failed
// request. Requests are throttled through a shared rate limiter so bulk
// refreshes stay polite to upstream indexes.
type RemoteCatalog struct {
	source     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRemoteCatalog creates a checker for the named source's catalog endpoint.
func NewRemoteCatalog(source, baseURL string, client *http.Client, limiter *rate.Limiter) *RemoteCatalog {
	if client == nil {
		client = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &RemoteCatalog{
		source:     source,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		limiter:    limiter,
	}
}

// Name returns the slug of the source this checker probes.
func (rc *RemoteCatalog) Name() string {
	return rc.source
}

// Check queries the catalog endpoint for identifier. Catalogs that reply with
// a JSON object carrying a "version" field get that version recorded on the
// returned status; any other 200 body still counts as available.
func (rc *RemoteCatalog) Check(ctx context.Context, identifier string) (PackageStatus, error) {
	status := PackageStatus{Identifier: identifier}

	if err := rc.limiter.Wait(ctx); err != nil {
		return status, fmt.Errorf("rate limiter wait: %w", err)
	}

	fullURL := rc.baseURL + "/" + url.PathEscape(identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return status, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return status, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return status, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return status, fmt.Errorf("failed to read response: %w", err)
		}

		status.Available = true

		var payload struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			status.Version = payload.Version
		}

		return status, nil
	default:
		return status, fmt.Errorf("%w: %s catalog returned status %d", shared.ErrAPIRequest, rc.source, resp.StatusCode)
	}
}
