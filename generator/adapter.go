package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultCallTimeout bounds each individual backend call. A timed-out shape
// counts as failed and the scan moves on to the next one.
const defaultCallTimeout = 60 * time.Second

// callShape is one named way of invoking the model backend. Client
// libraries for these backends change method signatures between versions,
// so the adapter never assumes a single one: it runs an ordered list of
// shapes and keeps the first that yields usable text.
type callShape struct {
	name   string
	invoke func(ctx context.Context, prompt string) (string, error)
}

// ShapeFailure records one failed call-shape attempt.
type ShapeFailure struct {
	Shape string
	Err   error
}

// ModelUnavailableError means every call shape failed. The ordered attempt
// list is part of the contract: callers rely on it to diagnose which shapes
// were tried and why each one failed.
type ModelUnavailableError struct {
	Failures []ShapeFailure
}

func (e *ModelUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Shape, f.Err))
	}
	return "model unavailable after all call shapes: " + strings.Join(parts, "; ")
}

// Adapter runs an ordered call-shape scan against one backend. It
// implements LLMClient.
type Adapter struct {
	provider string
	shapes   []callShape
	timeout  time.Duration
}

func newAdapter(provider string, shapes []callShape) *Adapter {
	return &Adapter{provider: provider, shapes: shapes, timeout: defaultCallTimeout}
}

// Complete tries each call shape in order and returns the first non-empty
// response text. Per-shape errors are collected, never propagated
// individually; exhaustion surfaces as *ModelUnavailableError.
func (a *Adapter) Complete(ctx context.Context, prompt string) (string, error) {
	var failures []ShapeFailure
	for _, shape := range a.shapes {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		text, err := shape.invoke(callCtx, prompt)
		cancel()
		if err != nil {
			log.Debug().Str("provider", a.provider).Str("shape", shape.name).Err(err).Msg("Call shape failed")
			failures = append(failures, ShapeFailure{Shape: shape.name, Err: err})
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Debug().Str("provider", a.provider).Str("shape", shape.name).Msg("Call shape returned empty text")
			failures = append(failures, ShapeFailure{Shape: shape.name, Err: fmt.Errorf("empty response text")})
			continue
		}
		log.Debug().Str("provider", a.provider).Str("shape", shape.name).Int("chars", len(text)).Msg("Call shape succeeded")
		return text, nil
	}
	return "", &ModelUnavailableError{Failures: failures}
}
