package session

import (
	"context"

	"goanalytics/domain/core"
)

// cancellationToken ties one Running session to the context handed to the job client.
// Settlements are matched against the live session by id, never by arrival order.
type cancellationToken struct {
	id     core.TokenID
	ctx    context.Context
	cancel context.CancelFunc
}

func newCancellationToken(parent context.Context) *cancellationToken {
	ctx, cancel := context.WithCancel(parent)
	return &cancellationToken{
		id:     core.NewTokenID(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (t *cancellationToken) signal() {
	if t != nil {
		t.cancel()
	}
}
