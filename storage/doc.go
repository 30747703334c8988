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


// Package storage provides the persistence layer for teamup.
//
// Repository interfaces decouple the badger implementation from the index,
// ingestion and re-embedding code, so tests and alternate stores can be
// swapped in without touching business logic.
//
// # Architecture
//
//   - Repository: transaction support and lifecycle shared by all repositories
//   - ProfileStore: read-only lookup of the current profile for a user
//   - ProfileRepository: durable profile records backing the in-memory index
//   - CheckpointRepository: progress markers for resumable batch jobs
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	profiles := badger.NewProfileRepository(backend)
//
// Use in tests with in-memory storage:
//
//	profiles, checkpoints, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context. Long scans such as
// ForEachProfile check it between batches.
package storage
