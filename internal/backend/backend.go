// Package backend defines the collaborator interface the orchestration core
// consumes. A backend is an opaque processing unit: it can be loaded,
// invoked, and unloaded, and reports a memory footprint estimate. The core
// never looks inside a backend; real model runtimes and the simulated
// providers used for local runs and tests are interchangeable here.
package backend

import (
	"context"

	"braind/pkg/types"
)

// Input carries one request into a backend invocation.
type Input struct {
	Message    string
	SessionID  string
	Capability types.Capability
}

// Output carries the backend's result.
type Output struct {
	Content string
}

// Backend is the contract every processing unit implements.
type Backend interface {
	// Load initializes the backend. It is called at most once per loaded
	// lifetime and may be slow; ctx bounds the attempt.
	Load(ctx context.Context) error
	// Invoke processes one input. Only valid between Load and Unload.
	Invoke(ctx context.Context, in Input) (Output, error)
	// Unload releases the backend's resources, best effort.
	Unload() error
	// EstimatedMemoryMB reports the footprint of the loaded backend.
	EstimatedMemoryMB() int
}

// Factory builds a Backend for a catalog entry. The lifecycle manager calls
// it once per load so evicted backends are recreated from scratch.
type Factory func(spec types.BackendSpec) (Backend, error)
