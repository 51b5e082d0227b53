// Package upstream provides the responders consulted on cache misses.
//
// A Responder answers a query and returns an opaque payload the cache can
// admit. Mock answers deterministically without network access; OpenAI
// forwards the query to a chat-completions model.
package upstream

import (
	"context"
	"encoding/json"
)

// Answer is the payload produced by a responder.
type Answer struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

// Responder answers queries that missed the cache.
type Responder interface {
	// Name returns the responder identifier for logs and metrics.
	Name() string
	// Respond answers query and returns the payload to cache.
	Respond(ctx context.Context, query string) (json.RawMessage, error)
}
