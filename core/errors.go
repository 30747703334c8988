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

import "errors"

// Domain validation errors
var (
	// ErrInvalidProfile indicates a Profile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrProfileNotFound indicates the requested user has no indexed profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Request errors
var (
	// ErrEmptyQuery indicates the search text is blank after trimming.
	ErrEmptyQuery = errors.New("search query is required")

	// ErrInvalidFilter indicates a malformed filter value or range.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidPage indicates a negative page or non-positive page size.
	ErrInvalidPage = errors.New("invalid page")

	// ErrProfileIncomplete indicates the requester has neither skills nor roles.
	ErrProfileIncomplete = errors.New("update your profile with skills or preferred roles before requesting recommendations")
)

// Upstream errors
var (
	// ErrUpstreamUnavailable indicates the embedding provider kept failing
	// after all retries.
	ErrUpstreamUnavailable = errors.New("embedding service unavailable")

	// ErrTimeout indicates the caller's deadline elapsed during an upstream call.
	ErrTimeout = errors.New("request timed out")
)
