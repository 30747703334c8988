// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"slices"
	"strings"
)

// NormalizeSet trims entries, drops empty ones and removes case-insensitive
// duplicates. First-seen order and casing are preserved. A limit > 0 caps
// the number of entries kept.
func NormalizeSet(values []string, limit int) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FoldSet returns the lower-cased members of values as a lookup set.
func FoldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// Difference returns the members of a that are not in b, compared
// case-insensitively and sorted for deterministic output.
func Difference(a, b []string) []string {
	exclude := FoldSet(b)
	var out []string
	for _, v := range a {
		if _, ok := exclude[strings.ToLower(v)]; !ok {
			out = append(out, v)
		}
	}
	sortFolded(out)
	return out
}

// Intersection returns the members of a that are also in b, compared
// case-insensitively and sorted for deterministic output.
func Intersection(a, b []string) []string {
	include := FoldSet(b)
	var out []string
	for _, v := range a {
		if _, ok := include[strings.ToLower(v)]; ok {
			out = append(out, v)
		}
	}
	sortFolded(out)
	return out
}

// Overlaps reports whether a and b share at least one member, ignoring case.
func Overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := FoldSet(b)
	for _, v := range a {
		if _, ok := set[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}

func sortFolded(values []string) {
	slices.SortFunc(values, func(x, y string) int {
		if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	})
}
