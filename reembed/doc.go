// Package reembed recomputes profile embeddings in bulk, for example after
// switching embedding models or to repair profiles whose background
// embedding failed.
//
// Profiles are processed in user ID order and in batches. A checkpoint is
// saved after every batch so an interrupted run resumes where it stopped.
package reembed
