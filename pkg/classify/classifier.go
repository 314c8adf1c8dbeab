// Package classify provides the AI classification collaborator: it turns a
// symbol's recent bars into an optional trade signal.
package classify

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-agents/internal/types"
)

// Classifier classifies a symbol's recent bars into an optional trade
// signal. A None result means no actionable signal.
type Classifier interface {
	Classify(ctx context.Context, symbol string, bars []types.Bar) (optional.Option[types.TradeSignal], error)
}
