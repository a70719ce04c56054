package decorator

import "context"

// P - params, R - result
type CmdHandler[P any, R any] interface {
	Handle(ctx context.Context, p P) (R, error)
}

// Q - query, R - result
type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}
