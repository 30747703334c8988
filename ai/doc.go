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


// Package ai provides abstractions for the embedding service used by teamup.
//
// Profiles and free-text queries are embedded into the same vector space so
// the index can rank candidates by cosine similarity. The index, query
// encoder and ingestion pipeline depend on the Embedder interface rather than
// a concrete client.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo client for OpenAI-compatible /v1/embeddings
//     endpoints, throttled with a token bucket
//   - ai/breaker: circuit breaker decorator that fails fast while the
//     upstream is down
//   - ai/mock: deterministic test double
//
// # Calling the provider
//
// Call sites go through Embed and EmbedBatch, which apply a RetryPolicy:
// a per-attempt timeout, a bounded number of attempts and exponential
// backoff between them.
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithHost(host)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	embedder := breaker.New(provider.Embedder())
//	vec, err := ai.Embed(ctx, embedder, "react developer", ai.DefaultRetryPolicy())
//	switch {
//	case errors.Is(err, ai.ErrEmbeddingProvider):
//	    // upstream unavailable after all attempts
//	case errors.Is(err, context.DeadlineExceeded):
//	    // caller deadline
//	}
package ai
