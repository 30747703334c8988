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


package reembed

import (
	"context"

	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/index"
)

const (
	// DefaultBatchSize is the default number of profiles embedded per call
	DefaultBatchSize = 64
)

// ProfileIterator walks an index snapshot in batches.
type ProfileIterator struct {
	index     *index.Index
	batchSize int
}

// NewProfileIterator creates a new profile iterator.
// batchSize: number of profiles per batch (defaults to DefaultBatchSize)
func NewProfileIterator(idx *index.Index, batchSize int) *ProfileIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ProfileIterator{
		index:     idx,
		batchSize: batchSize,
	}
}

// Select returns the profiles after the given user ID, in user ID order,
// that pass keep. A nil keep selects everything.
func (it *ProfileIterator) Select(ctx context.Context, after string, keep func(*core.Profile) bool) []*core.Profile {
	var out []*core.Profile
	for _, p := range it.index.All(ctx) {
		if p.UserID <= after {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ForEach calls fn with consecutive batches of profiles.
// Iteration stops on first error from fn.
// Context cancellation is checked between batches.
func (it *ProfileIterator) ForEach(ctx context.Context, profiles []*core.Profile, fn func([]*core.Profile) error) error {
	for i := 0; i < len(profiles); i += it.batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := min(i+it.batchSize, len(profiles))
		if err := fn(profiles[i:end]); err != nil {
			return err
		}
	}
	return nil
}
