/*
Package ctlog queries certificate transparency data for candidate subdomain
names. crt.sh is the single source: its JSON endpoint aggregates CT log
entries and pre-extracts subject names, so no certificate parsing happens
here — the package hands raw name_value strings to the normalizer and leaves
scoping decisions to it.
*/
package ctlog

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/x-stp/subscope/internal/client"
	"github.com/x-stp/subscope/internal/metrics"
)

// Constants related to the crt.sh endpoint.
const (
	// QueryURLTemplate is the crt.sh wildcard identity search. The %%25 is a
	// URL-encoded "%", so the query matches every name under the domain.
	QueryURLTemplate = "https://crt.sh/?q=%%25.%s&output=json"
	// MaxResponseBytes caps the body read; crt.sh responses for large
	// organisations can run to tens of megabytes.
	MaxResponseBytes = 50 << 20
	// DefaultQueryRate paces queries against crt.sh. One identity search per
	// run is typical, but recursive callers share the same Source.
	DefaultQueryRate = rate.Limit(1)

	userAgent = "subscope/0.1 (+https://github.com/x-stp/subscope)"
)

// entry mirrors the subset of a crt.sh row this source consumes. name_value
// can hold several newline-joined subject names per certificate.
type entry struct {
	NameValue string `json:"name_value"`
}

// Source fetches raw candidate names from crt.sh through the shared HTTP
// client, pacing its queries with a rate limiter.
type Source struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	urlTemplate string
}

// NewSource returns a Source backed by the shared HTTP client.
func NewSource() *Source {
	return &Source{
		httpClient:  client.GetHTTPClient(),
		limiter:     rate.NewLimiter(DefaultQueryRate, 1),
		urlTemplate: QueryURLTemplate,
	}
}

// FetchCandidates returns the raw name_value strings crt.sh knows for
// domain. Entries may be newline-joined batches, wildcard-prefixed, or out
// of scope entirely; normalization is the caller's concern.
//
// A failure — transport error, non-200 status, unparseable body — is
// returned as an error so the caller can log it and continue with whatever
// was gathered. Discovery never aborts a run.
func (s *Source) FetchCandidates(ctx context.Context, domain string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	names, err := s.fetch(ctx, domain)
	if metrics.IsMetricsEnabled() {
		m := metrics.GetMetrics()
		m.SourceFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			m.SourceFetchErrors.Inc()
		} else {
			m.CandidatesReturned.Add(float64(len(names)))
		}
	}
	return names, err
}

func (s *Source) fetch(ctx context.Context, domain string) ([]string, error) {
	queryURL := fmt.Sprintf(s.urlTemplate, url.QueryEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building crt.sh request for %s: %w", domain, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying crt.sh for %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crt.sh returned HTTP %d for %s", resp.StatusCode, domain)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading crt.sh response for %s: %w", domain, err)
	}

	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing crt.sh response for %s: %w", domain, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.NameValue != "" {
			names = append(names, e.NameValue)
		}
	}
	return names, nil
}
