package ai

import "context"

// Provider is the model-invocation collaborator. Implementations send a chat
// request and return the completed response. Any error a Provider returns is
// treated as potentially transient by the caller's transport retry layer, so
// implementations should not retry internally.
type Provider interface {
	// SendMessage sends a chat request to the provider and returns the
	// completed response. Returns an error if the provider call fails,
	// the context is cancelled, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// InvokeFunc adapts a plain function to the Provider interface.
type InvokeFunc func(ctx context.Context, request ChatRequest) (*ChatResponse, error)

func (f InvokeFunc) SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	return f(ctx, request)
}
