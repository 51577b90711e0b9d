package contract

import (
	"context"

	"rag-chat-be/internal/entity"
)

// TurnRepository is the append-only session history log.
type TurnRepository interface {
	// Append stores one turn; Id and Ts are assigned by the store.
	Append(ctx context.Context, turn *entity.Turn) error
	// FindBySession returns turns ordered by (ts, id). limit <= 0 returns all.
	FindBySession(ctx context.Context, sessionId string, limit, offset int) ([]*entity.Turn, error)
	CountBySession(ctx context.Context, sessionId string) (int64, error)
}
