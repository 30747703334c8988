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


// Package search is the matching engine's entry point.
//
// An Engine answers two kinds of request:
//   - Search embeds free text and ranks profiles by similarity alone.
//   - Recommend ranks profiles for a requesting user by a weighted blend of
//     similarity and complementarity, with a short list of reasons.
//
// Both apply the same structured filters before ranking and never return
// the requesting user. The Engine also exposes team formation and the
// overlap-based compatibility figure shown on profile pages.
package search
