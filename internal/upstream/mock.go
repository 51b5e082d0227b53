package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Mock is a deterministic responder for development and tests. The answer
// embeds a short digest of the query so distinct queries produce distinct
// payloads.
type Mock struct{}

// NewMock creates a mock responder.
func NewMock() *Mock {
	return &Mock{}
}

// Name implements Responder.
func (*Mock) Name() string { return "mock" }

// Respond implements Responder.
func (*Mock) Respond(_ context.Context, query string) (json.RawMessage, error) {
	digest := sha256.Sum256([]byte(query))
	answer := Answer{
		Answer: fmt.Sprintf("mock answer for query %s", hex.EncodeToString(digest[:4])),
		Model:  "mock",
	}
	payload, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("marshal mock answer: %w", err)
	}
	return payload, nil
}
