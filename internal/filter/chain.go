package filter

import "sync"

// Chain is an ordered sequence of predicates. The zero value is a
// valid empty chain. A Chain is safe for concurrent use: watch
// callbacks may query it while the consumer appends predicates.
type Chain struct {
	mu    sync.RWMutex
	preds []Predicate
}

func NewChain(preds ...Predicate) *Chain {
	return &Chain{preds: preds}
}

// Append adds predicates to the end of the chain.
func (c *Chain) Append(preds ...Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preds = append(c.preds, preds...)
}

// Len returns the number of predicates in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.preds)
}

// Matches applies AND semantics: true when the chain is empty,
// otherwise true iff every predicate matches. The empty-chain
// policy is intentional: an empty AND chain is "no restriction".
func (c *Chain) Matches(path string) bool {
	c.mu.RLock()
	preds := c.preds
	c.mu.RUnlock()

	for _, p := range preds {
		if !p(path) {
			return false
		}
	}
	return true
}

// MatchesAny applies OR semantics: false when the chain is empty,
// otherwise true iff any predicate matches. An empty OR chain is
// "nothing qualifies yet" — the asymmetry with Matches is deliberate.
func (c *Chain) MatchesAny(path string) bool {
	c.mu.RLock()
	preds := c.preds
	c.mu.RUnlock()

	for _, p := range preds {
		if p(path) {
			return true
		}
	}
	return false
}

// Filter retains, in order, the paths satisfying AND semantics.
func (c *Chain) Filter(paths []string) []string {
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		if c.Matches(path) {
			result = append(result, path)
		}
	}
	return result
}

// FilterAny retains, in order, the paths satisfying OR semantics.
func (c *Chain) FilterAny(paths []string) []string {
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		if c.MatchesAny(path) {
			result = append(result, path)
		}
	}
	return result
}
