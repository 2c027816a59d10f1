package scope

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
	"reflect"
	"testing"
)

// TestNormalize provides table-driven tests for raw certificate-log entries.
// Goal: ensure the normalizer accepts exactly the strict sub-labels of the
// root domain and nothing else.
func TestNormalize(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		root     string
		raw      string
		expected []Hostname
	}{
		{"Simple subdomain", "example.com", "www.example.com", []Hostname{"www.example.com"}},
		{"Uppercase lowered", "example.com", "WWW.EXAMPLE.COM", []Hostname{"www.example.com"}},
		{"Surrounding whitespace trimmed", "example.com", "  api.example.com  ", []Hostname{"api.example.com"}},
		{"Wildcard label stripped", "example.com", "*.sub.example.com", []Hostname{"sub.example.com"}},
		{"Wildcard strips exactly one label", "example.com", "*.a.b.example.com", []Hostname{"a.b.example.com"}},
		{"Wildcard of root rejected", "example.com", "*.example.com", nil},
		{"Root itself rejected", "example.com", "example.com", nil},
		{"Look-alike suffix rejected", "example.com", "not-example.com", nil},
		{"Unrelated domain rejected", "example.com", "evil.test", nil},
		{"Newline batch split", "example.com", "sub.example.com\nother.example.com", []Hostname{"sub.example.com", "other.example.com"}},
		{"Batch with junk lines", "example.com", "a.example.com\n\nnot-example.com\nexample.com", []Hostname{"a.example.com"}},
		{"Deep subdomain", "example.com", "x.y.z.example.com", []Hostname{"x.y.z.example.com"}},
		{"Empty raw", "example.com", "", nil},
		{"Empty root", "", "www.example.com", nil},
		{"Root with mixed case", "Example.COM", "www.example.com", []Hostname{"www.example.com"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			actual := Normalize(tc.root, tc.raw)
			if !reflect.DeepEqual(actual, tc.expected) {
				t.Errorf("Normalize(%q, %q) = %v; want %v", tc.root, tc.raw, actual, tc.expected)
			}
		})
	}
}

// TestSetCollectsCandidateBatch mirrors a full discovery pass over a typical
// crt.sh result: wildcard entries, multi-name batches, out-of-scope names
// and the bare root all arrive together.
func TestSetCollectsCandidateBatch(t *testing.T) {
	t.Parallel()
	candidates := []string{
		"*.example.com",
		"sub.example.com\nother.example.com",
		"not-example.com",
		"example.com",
	}
	set := NewSet()
	for _, raw := range candidates {
		set.AddRaw("example.com", raw)
	}
	want := []string{"other.example.com", "sub.example.com"}
	if got := set.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("discovery set = %v; want %v", got, want)
	}
	if set.Contains("example.com") {
		t.Fatalf("root domain must never enter the discovery set")
	}
}

func TestSetDeduplicates(t *testing.T) {
	t.Parallel()
	set := NewSet()
	set.Add("a.example.com")
	set.Add("a.example.com")
	set.Add("b.example.com")
	if set.Len() != 2 {
		t.Fatalf("expected 2 unique members, got %d", set.Len())
	}
}

func TestSetSortedIsDeterministic(t *testing.T) {
	t.Parallel()
	set := NewSet()
	for _, h := range []Hostname{"c.example.com", "a.example.com", "b.example.com"} {
		set.Add(h)
	}
	want := []Hostname{"a.example.com", "b.example.com", "c.example.com"}
	if got := set.Sorted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Sorted() = %v; want %v", got, want)
	}
}

func TestEmptySetStringsIsNotNil(t *testing.T) {
	t.Parallel()
	if got := NewSet().Strings(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

// BenchmarkNormalizeSimple measures performance for a common single-name entry.
func BenchmarkNormalizeSimple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Normalize("example.com", "www.example.com")
	}
}

// BenchmarkNormalizeBatch measures performance for a multi-name wildcard entry.
func BenchmarkNormalizeBatch(b *testing.B) {
	raw := "*.a.example.com\nB.example.com\nnot-example.com\n  c.example.com  "
	for i := 0; i < b.N; i++ {
		_ = Normalize("example.com", raw)
	}
}
