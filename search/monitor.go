package search

import "time"

// Operation names passed to a Monitor.
const (
	OpSearch    = "search"
	OpRecommend = "recommend"
)

// Monitor provides hooks to observe requests as they move through the engine.
// Implementations must be safe for concurrent use.
type Monitor interface {
	Start(op string)
	AfterEncode(op string, elapsed time.Duration)
	AfterRetrieve(op string, candidates, matched int)
	SkippedCandidate(op string, userID string)
	Finish(op string, results int, elapsed time.Duration, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                   {}
func (n *noopMonitor) AfterEncode(_ string, _ time.Duration)            {}
func (n *noopMonitor) AfterRetrieve(_ string, _, _ int)                 {}
func (n *noopMonitor) SkippedCandidate(_ string, _ string)              {}
func (n *noopMonitor) Finish(_ string, _ int, _ time.Duration, _ error) {}
