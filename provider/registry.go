package provider

import (
	"sync"
)

// ProcessorRegistry holds the processors callbacks are dispatched to, in registration order
type ProcessorRegistry struct {
	processors []Processor
	mu         sync.RWMutex
}

// NewProcessorRegistry creates a registry with the given processors
func NewProcessorRegistry(processors ...Processor) *ProcessorRegistry {
	return &ProcessorRegistry{
		processors: append([]Processor(nil), processors...),
	}
}

// Register adds a processor
func (r *ProcessorRegistry) Register(p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, p)
}

// Matching returns the processors whose type is empty or equal to transactionType
func (r *ProcessorRegistry) Matching(transactionType string) []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Processor, 0, len(r.processors))
	for _, p := range r.processors {
		if Matches(p, transactionType) {
			matched = append(matched, p)
		}
	}

	return matched
}
