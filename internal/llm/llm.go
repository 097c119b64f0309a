package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the model call succeeded but produced no text.
// Callers decide whether an empty reply is tolerable for their stage.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Role labels for conversation turns, matching the upstream wire values.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of conversation context sent upstream.
type Message struct {
	Role string
	Text string
}

// Citation is one grounding source attached to a response. Title may be
// empty; URI is the only field the upstream guarantees when present.
type Citation struct {
	URI   string
	Title string
}

// Request describes a single generation call. Zero values mean "provider
// default": nil Temperature leaves sampling untouched, nil ThinkingBudget
// leaves deliberation at whatever the model does on its own.
type Request struct {
	Model           string
	System          string
	Messages        []Message
	EnableGrounding bool
	Temperature     *float32
	ThinkingBudget  *int32
	ResponseJSON    bool
}

// Response carries the model text plus any grounding citations the
// provider attached. Citations may be nil.
type Response struct {
	Text      string
	Citations []Citation
}

// Client is the minimal surface the rest of the codebase depends on.
// Cross-cutting concerns (rate limiting, logging) are applied via Middleware.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// Middleware wraps a Client with additional behaviour.
type Middleware func(next Client) Client

// Chain applies middlewares left to right, so the first middleware is the
// outermost wrapper.
func Chain(base Client, mws ...Middleware) Client {
	out := base
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Ptr returns a pointer to v. Convenient for Request option fields.
func Ptr[T any](v T) *T { return &v }
