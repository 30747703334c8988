// Package ingestion keeps the profile index in step with the profile store.
//
// The Pipeline type applies profile changes in two steps:
//   - Attributes are stored in the index immediately
//   - The embedding is recomputed asynchronously on a worker pool
//
// Until the new embedding lands, the profile keeps its previous vector and
// is reported as stale. A re-embedding result is only applied if the
// profile text it was computed from is still current, so a slow job never
// overwrites the vector of a newer edit. Errors during async processing
// are logged and reported to the Observer but do not fail the change.
package ingestion
