package core

import "context"

type suppressHeaderKey struct{}

// WithSuppressHeader marks ctx so that per-bundle headers are not printed.
// The MCP server relies on this since stdout carries its protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey{}, true)
}

func shouldSuppressHeader(ctx context.Context) bool {
	suppress, _ := ctx.Value(suppressHeaderKey{}).(bool)
	return suppress
}
