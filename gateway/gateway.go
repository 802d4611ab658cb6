package gateway

import (
	"context"
	"fmt"
)

// Gateway runs a named generative model to completion and returns its
// normalized output. Implementations block until the backend reports a
// terminal status; polling against the backend is their own concern.
type Gateway interface {
	Run(ctx context.Context, model string, input map[string]any) (Result, error)
}

// Error reports a failed backend call: network, auth, malformed
// response, or a failure the backend itself reported. The caller
// decides whether it is fatal or skippable.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: model %s: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
