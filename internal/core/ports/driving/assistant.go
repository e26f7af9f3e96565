package driving

import (
	"context"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// Assistant answers natural-language analytics questions over the
// indexed accounting data.
type Assistant interface {
	// Ask translates the question into a structured query, executes
	// it, and produces a conversational answer. Queries referencing
	// unknown fields fail with an error wrapping domain.ErrInvalidQuery
	// and are never retried automatically.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
