package tools

import (
	"context"
)

var (
	// NopRunner is a runner that does nothing extra.
	NopRunner = NewRunner(context.Background(), nil)
)

// Runner is the environment a tool runs in.
type Runner interface {
	// Context is cancelled when the host abandons the call.
	Context() context.Context
	// Report publishes a short progress status.
	Report(status string)
}

type runner struct {
	ctx    context.Context
	report func(status string)
}

// NewRunner returns a new Runner. Tools run with this Runner will report status
// updates to the provided function, which may be nil.
func NewRunner(ctx context.Context, report func(status string)) Runner {
	if ctx == nil {
		ctx = context.Background()
	}
	return &runner{ctx: ctx, report: report}
}

func (r *runner) Context() context.Context {
	return r.ctx
}

func (r *runner) Report(status string) {
	if r.report != nil {
		r.report(status)
	}
}
