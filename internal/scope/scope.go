/*
Package scope canonicalizes raw certificate subject names into in-scope
hostnames and accumulates them into a deduplicated discovery set.

Certificate transparency data is noisy: one log entry can carry several
newline-joined subject names, names may be wildcard-prefixed, and identity
searches return plenty of look-alike or unrelated domains. The normalizer's
job is to reduce that noise to the set of hostnames strictly below the root
domain under scan; everything else is dropped without comment.
*/
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
	"sort"
	"strings"
)

// Hostname is a normalized host name: lowercase, wildcard-free, and a strict
// sub-label of the root domain it was normalized against. Immutable once
// constructed.
type Hostname string

// Normalize canonicalizes one raw candidate entry against the root domain
// and returns the in-scope hostnames it contains.
//
// The entry is split on newlines first, since a single certificate can name
// several subjects. Per name: surrounding whitespace is trimmed, the name is
// lowercased, and one leading wildcard label ("*.") is stripped. A name is
// accepted only if it sits strictly below root — suffixed by "."+root, which
// also excludes root itself and look-alikes such as "not-example.com" for
// root "example.com". Rejected names are dropped silently; malformed or
// out-of-scope entries are expected noise from the data source.
func Normalize(root, raw string) []Hostname {
	root = strings.ToLower(strings.TrimSpace(root))
	if root == "" {
		return nil
	}
	var accepted []Hostname
	for _, name := range strings.Split(raw, "\n") {
		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.TrimPrefix(name, "*.")
		if name == "" || !strings.HasSuffix(name, "."+root) {
			continue
		}
		accepted = append(accepted, Hostname(name))
	}
	return accepted
}

// Set is a deduplicated, unordered collection of hostnames. Duplicates
// collapse silently; insertion order is irrelevant, only membership matters.
//
// A Set is not safe for concurrent mutation. The worker pool funnels all
// verdicts through a single collector goroutine, so the accumulating Set is
// only ever touched from one goroutine at a time.
type Set struct {
	members map[Hostname]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{members: make(map[Hostname]struct{})}
}

// Add inserts host into the set.
func (s *Set) Add(host Hostname) {
	s.members[host] = struct{}{}
}

// AddRaw normalizes raw against root and inserts every accepted name.
// It reports how many names were accepted (including duplicates of existing
// members).
func (s *Set) AddRaw(root, raw string) int {
	hosts := Normalize(root, raw)
	for _, h := range hosts {
		s.Add(h)
	}
	return len(hosts)
}

// Contains reports membership.
func (s *Set) Contains(host Hostname) bool {
	_, ok := s.members[host]
	return ok
}

// Len returns the number of unique members.
func (s *Set) Len() int {
	return len(s.members)
}

// Sorted returns the members in lexicographic order. Sorting makes the
// report deterministic and diffable across runs.
func (s *Set) Sorted() []Hostname {
	out := make([]Hostname, 0, len(s.members))
	for h := range s.members {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns Sorted as plain strings for serialization. The result is
// never nil, so an empty set serializes as [] rather than null.
func (s *Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, h := range sorted {
		out[i] = string(h)
	}
	return out
}
