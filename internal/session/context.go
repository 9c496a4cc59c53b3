package session

import (
	"context"

	"github.com/ayush/research-intelligence/internal/research"
)

type ctxKey struct{}

type bound struct {
	id   string
	ctrl *research.Controller
}

// NewContext returns a copy of ctx carrying the session ID and its controller.
func NewContext(ctx context.Context, id string, ctrl *research.Controller) context.Context {
	return context.WithValue(ctx, ctxKey{}, bound{id: id, ctrl: ctrl})
}

// FromContext returns the session bound by NewContext.
func FromContext(ctx context.Context) (string, *research.Controller, bool) {
	b, ok := ctx.Value(ctxKey{}).(bound)
	if !ok {
		return "", nil, false
	}
	return b.id, b.ctrl, true
}
