package client

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
	"net/http"
	"testing"
	"time"
)

func TestInitHTTPClientFillsDefaults(t *testing.T) {
	sharedClient = nil
	clientInitialized = false

	InitHTTPClient(&Config{})
	c := GetHTTPClient()

	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr == nil {
		t.Fatalf("expected *http.Transport, got %T", c.Transport)
	}
	if tr.MaxIdleConns == 0 {
		t.Fatalf("expected MaxIdleConns defaulted, got %d", tr.MaxIdleConns)
	}
	if tr.MaxConnsPerHost == 0 {
		t.Fatalf("expected MaxConnsPerHost defaulted, got %d", tr.MaxConnsPerHost)
	}
	if c.Timeout == 0 {
		t.Fatalf("expected RequestTimeout defaulted, got %v", c.Timeout)
	}
}

func TestGetHTTPClientLazyInit(t *testing.T) {
	sharedClient = nil
	clientInitialized = false

	if c := GetHTTPClient(); c == nil {
		t.Fatalf("expected lazily initialized client, got nil")
	}
}

func TestNewProbeClientSkipsVerificationAndBoundsTimeout(t *testing.T) {
	t.Parallel()
	timeout := 2 * time.Second
	c := NewProbeClient(timeout)

	if c.Timeout != timeout {
		t.Fatalf("expected client timeout %v, got %v", timeout, c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr == nil {
		t.Fatalf("expected *http.Transport, got %T", c.Transport)
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("probe client must skip TLS verification")
	}
	if tr.ResponseHeaderTimeout != timeout {
		t.Fatalf("expected header timeout %v, got %v", timeout, tr.ResponseHeaderTimeout)
	}
}
