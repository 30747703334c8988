// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without an embedding service and give controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedderWithDimension(8)
//	vec, err := embedder.EmbedText(ctx, "react developer")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("upstream down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder returns unit-length vectors derived from an FNV hash of the
// text, so identical text always embeds identically. The call counter is
// safe for concurrent use.
package mock
