package backend

import (
	"context"
	"fmt"
	"time"

	"braind/pkg/types"
)

// Simulated is a stand-in backend used by the default binary and by tests.
// Load sleeps for the spec's load cost hint; Invoke echoes a short
// capability-tagged reply. Memory is taken from the spec's declared
// estimate.
type Simulated struct {
	spec types.BackendSpec
}

// NewSimulated returns a Simulated backend for spec.
func NewSimulated(spec types.BackendSpec) *Simulated {
	return &Simulated{spec: spec}
}

// SimulatedFactory is a Factory producing Simulated backends.
func SimulatedFactory(spec types.BackendSpec) (Backend, error) {
	return NewSimulated(spec), nil
}

func (s *Simulated) Load(ctx context.Context) error {
	d := time.Duration(s.spec.LoadCostHintMS) * time.Millisecond
	if d <= 0 {
		d = 5 * time.Millisecond
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulated) Invoke(ctx context.Context, in Input) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	return Output{
		Content: fmt.Sprintf("[%s/%s] %s", s.spec.ID, s.spec.Capability, in.Message),
	}, nil
}

func (s *Simulated) Unload() error { return nil }

func (s *Simulated) EstimatedMemoryMB() int {
	if s.spec.EstMemoryMB > 0 {
		return s.spec.EstMemoryMB
	}
	return 1
}
