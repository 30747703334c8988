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


package ingestion

import "context"

// embeddingJob asks for the embedding of one profile's text.
type embeddingJob struct {
	userID string
	text   string
	// digest identifies text; the result is discarded if it is no longer current.
	digest uint64
}

// processor is an internal interface for background profile work.
type processor interface {
	// process runs one job to completion.
	process(ctx context.Context, job embeddingJob) error
}

// Observer is notified of the outcome of every background embedding job.
// Implementations must be safe for concurrent use.
type Observer interface {
	EmbeddingApplied(userID string)
	EmbeddingDiscarded(userID string)
	EmbeddingFailed(userID string, err error)
}

type noopObserver struct{}

func (noopObserver) EmbeddingApplied(string)       {}
func (noopObserver) EmbeddingDiscarded(string)     {}
func (noopObserver) EmbeddingFailed(string, error) {}
