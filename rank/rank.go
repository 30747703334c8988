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


// Package rank orders scored candidates and cuts them into pages.
package rank

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/teamup/core"
)

// SortKey selects the score candidates are ordered by.
type SortKey int

const (
	// ByComposite orders by CompositeScore, used for recommendations.
	ByComposite SortKey = iota
	// BySimilarity orders by Similarity, used for plain search.
	BySimilarity
)

// Page is one slice of an ordered candidate list.
type Page struct {
	Results []core.CandidateMatch
	// Total is the number of distinct candidates before paging.
	Total    int
	Page     int
	PageSize int
}

// Aggregate deduplicates matches by user ID, keeping the first occurrence,
// sorts them descending by key with ties going to the smaller user ID, and
// returns the requested page. A page past the end is empty, not an error.
func Aggregate(matches []core.CandidateMatch, by SortKey, page, pageSize int) (*Page, error) {
	if page < 0 || pageSize <= 0 {
		return nil, fmt.Errorf("%w: page %d, size %d", core.ErrInvalidPage, page, pageSize)
	}

	seen := make(map[string]struct{}, len(matches))
	unique := make([]core.CandidateMatch, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		unique = append(unique, m)
	}

	slices.SortStableFunc(unique, func(a, b core.CandidateMatch) int {
		sa, sb := key(a, by), key(b, by)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return strings.Compare(a.UserID, b.UserID)
	})

	// page*pageSize may overflow for huge pages
	start := len(unique)
	if page <= len(unique)/pageSize {
		start = page * pageSize
	}
	end := start + min(pageSize, len(unique)-start)
	return &Page{
		Results:  slices.Clip(unique[start:end]),
		Total:    len(unique),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func key(m core.CandidateMatch, by SortKey) float64 {
	if by == BySimilarity {
		return m.Similarity
	}
	return m.CompositeScore
}
