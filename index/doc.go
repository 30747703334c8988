// Package index holds the profile index: every profile with its embedding,
// queried by filtered cosine similarity.
//
// The index serves reads from memory and persists writes through a
// storage.ProfileRepository, so a restart only needs Load. Similarity is
// the cosine mapped onto [0,1]; structured filters are a hard AND applied
// before ranking.
package index
