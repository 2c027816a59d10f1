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
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"golang.org/x/time/rate"
)

func testSource(srv *httptest.Server) *Source {
	return &Source{
		httpClient:  srv.Client(),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		urlTemplate: srv.URL + "/?q=%%25.%s&output=json",
	}
}

func TestFetchCandidatesReturnsRawNameValues(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "%.example.com" {
			t.Errorf("unexpected query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name_value": "*.example.com"},
			{"name_value": "sub.example.com\nother.example.com"},
			{"name_value": ""},
			{"name_value": "not-example.com"}
		]`))
	}))
	defer srv.Close()

	names, err := testSource(srv).FetchCandidates(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	want := []string{"*.example.com", "sub.example.com\nother.example.com", "not-example.com"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v; want %v", names, want)
	}
}

func TestFetchCandidatesNon200IsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testSource(srv).FetchCandidates(context.Background(), "example.com"); err == nil {
		t.Fatalf("expected error for HTTP 429")
	}
}

func TestFetchCandidatesBadJSONIsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	if _, err := testSource(srv).FetchCandidates(context.Background(), "example.com"); err == nil {
		t.Fatalf("expected error for unparseable body")
	}
}

func TestFetchCandidatesHonorsContextCancellation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testSource(srv).FetchCandidates(ctx, "example.com"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
