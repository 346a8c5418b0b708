package synthesis

import (
	"context"
	"time"
)

// probeTimeout bounds the one-time startup capability check
const probeTimeout = 10 * time.Second

// GenerationConfig controls decoding for a single generation call
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Backend is a generative model that produces text from a prompt
type Backend interface {
	// Generate produces text for the prompt with the given decoding config
	Generate(ctx context.Context, prompt string, config GenerationConfig) (string, error)
	// Probe performs a trivial call to verify the backend is reachable
	Probe(ctx context.Context) error
	// ModelName identifies the underlying model
	ModelName() string
}

// Availability is the result of the startup capability check. It is resolved
// once during synthesizer construction and never changes for the lifetime of
// the process; a failed per-request call does not flip it.
type Availability struct {
	Available bool
	Reason    string
}

// ProbeBackend performs the one-time capability check against a backend.
// A nil backend or a failed probe marks the backend unavailable.
func ProbeBackend(ctx context.Context, backend Backend) Availability {
	if backend == nil {
		return Availability{Available: false, Reason: "no generative backend configured"}
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := backend.Probe(probeCtx); err != nil {
		return Availability{Available: false, Reason: err.Error()}
	}

	return Availability{Available: true}
}
