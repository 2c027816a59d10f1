/*
Package report assembles the end-of-run artifact: one JSON document per
invocation associating the discovery set with its liveness verdicts.

The document shape is stable and diffable: both hostname lists are sorted
ascending and the counts are derived from the lists themselves, so they can
never disagree with what is serialized.
*/
package report

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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/x-stp/subscope/internal/scope"
	"github.com/x-stp/subscope/internal/util"
)

// TimestampLayout produces the YYYYMMDD_HHMMSS stamp used in the report body
// and the artifact filename. Local wall clock; the stamp exists for filename
// uniqueness and audit, not correctness.
const TimestampLayout = "20060102_150405"

// NotChecked is the active_subdomains value when liveness probing was skipped.
const NotChecked = "Not checked"

// Report is the serialized shape of one run. It is assembled once, after the
// worker pool has joined, and never mutated afterwards.
type Report struct {
	Domain          string `json:"domain"`
	Timestamp       string `json:"timestamp"`
	TotalSubdomains int    `json:"total_subdomains_found"`
	// ActiveCount is an int when probing ran and the NotChecked string when
	// it was skipped.
	ActiveCount   any      `json:"active_subdomains"`
	AllSubdomains []string `json:"all_subdomains"`
	ActiveList    []string `json:"active_subdomains_list"`
}

// New builds a Report from the two sets. active is ignored when checked is
// false: the artifact then carries the NotChecked marker and an empty list.
func New(domain string, discovered, active *scope.Set, checked bool, now time.Time) *Report {
	all := discovered.Strings()
	r := &Report{
		Domain:          domain,
		Timestamp:       now.Format(TimestampLayout),
		TotalSubdomains: len(all),
		ActiveCount:     NotChecked,
		AllSubdomains:   all,
		ActiveList:      []string{},
	}
	if checked {
		r.ActiveList = active.Strings()
		r.ActiveCount = len(r.ActiveList)
	}
	return r
}

// Filename derives the artifact name from the domain and timestamp.
func (r *Report) Filename() string {
	return fmt.Sprintf("%s_subdomains_%s.json", util.SanitizeFilename(r.Domain), r.Timestamp)
}

// Marshal renders the 2-space-indented UTF-8 document.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Fingerprint returns a short non-cryptographic hash of the serialized
// document, printed alongside the artifact path as an audit aid.
func (r *Report) Fingerprint() string {
	data, err := r.Marshal()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", xxh3.Hash(data))
}

// Write creates outputDir if needed and writes the artifact, returning its
// path. Any failure is returned to the caller: a run that reached assembly
// either produces the full artifact or fails loudly — never a partial file.
func (r *Report) Write(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	data, err := r.Marshal()
	if err != nil {
		return "", fmt.Errorf("serializing report for %s: %w", r.Domain, err)
	}
	path := filepath.Join(outputDir, r.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}
