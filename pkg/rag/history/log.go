package history

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Log is the append-only conversation record for a session.
// It enforces no alternation between user and assistant turns.
type Log struct {
	turns        contract.TurnRepository
	defaultLimit int
}

// NewLog builds a log whose Load falls back to defaultLimit turns per page.
// defaultLimit <= 0 means DefaultLimit; values above MaxLimit are capped.
func NewLog(turns contract.TurnRepository, defaultLimit int) *Log {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if defaultLimit > MaxLimit {
		defaultLimit = MaxLimit
	}
	return &Log{turns: turns, defaultLimit: defaultLimit}
}

func (l *Log) RecordUser(ctx context.Context, sessionId, content string) (*entity.Turn, error) {
	return l.record(ctx, &entity.Turn{
		SessionId: sessionId,
		Role:      entity.TurnRoleUser,
		Content:   content,
	})
}

// RecordAssistant stores the answer together with the ids of the chunks it was grounded on.
func (l *Log) RecordAssistant(ctx context.Context, sessionId, content string, sourceChunkIds []int64) (*entity.Turn, error) {
	return l.record(ctx, &entity.Turn{
		SessionId:      sessionId,
		Role:           entity.TurnRoleAssistant,
		Content:        content,
		SourceChunkIds: sourceChunkIds,
	})
}

func (l *Log) record(ctx context.Context, turn *entity.Turn) (*entity.Turn, error) {
	if err := l.turns.Append(ctx, turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// Load returns turns in insertion order. limit is clamped to [1, MaxLimit],
// with the log's default limit when non-positive.
func (l *Log) Load(ctx context.Context, sessionId string, limit, offset int) ([]*entity.Turn, error) {
	if limit <= 0 {
		limit = l.defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return l.turns.FindBySession(ctx, sessionId, limit, offset)
}
