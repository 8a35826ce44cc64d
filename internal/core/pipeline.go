package core

import (
	"fmt"
	"sort"
)

// Pipeline holds a collection of processors and manages their execution
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a new pipeline instance
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]Processor, 0),
	}
}

// AddProcessor adds a processor to the pipeline
func (p *Pipeline) AddProcessor(processor Processor) {
	p.processors = append(p.processors, processor)
}

// sorted returns the processors by priority (lower number runs earlier),
// keeping registration order for equal priorities
func (p *Pipeline) sorted() []Processor {
	sortedProcessors := make([]Processor, len(p.processors))
	copy(sortedProcessors, p.processors)

	sort.SliceStable(sortedProcessors, func(i, j int) bool {
		return sortedProcessors[i].Priority() < sortedProcessors[j].Priority()
	})
	return sortedProcessors
}

// ExecuteRequest executes all processors' OnRequest methods in priority order
func (p *Pipeline) ExecuteRequest(ctx *ProxyContext, req *Request) error {
	for _, processor := range p.sorted() {
		if err := processor.OnRequest(ctx, req); err != nil {
			return fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return nil
}

// ExecuteResponse executes all processors' OnResponse methods in reverse
// priority order, so the first processor to see the request is the last to
// see the response
func (p *Pipeline) ExecuteResponse(ctx *ProxyContext, resp *Response) error {
	sorted := p.sorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		processor := sorted[i]
		if err := processor.OnResponse(ctx, resp); err != nil {
			return fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return nil
}
