package memory

import (
	"context"
	"sync"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
)

// TurnRepository keeps turns in insertion order per session.
type TurnRepository struct {
	mu        sync.RWMutex
	nextId    int64
	bySession map[string][]entity.Turn
	now       func() time.Time
}

func NewTurnRepository() *TurnRepository {
	return &TurnRepository{
		bySession: make(map[string][]entity.Turn),
		now:       time.Now,
	}
}

var _ contract.TurnRepository = (*TurnRepository)(nil)

func (r *TurnRepository) Append(ctx context.Context, turn *entity.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	turns := r.bySession[turn.SessionId]

	ts := r.now()
	if n := len(turns); n > 0 && ts.Before(turns[n-1].Ts) {
		ts = turns[n-1].Ts
	}

	r.nextId++
	stored := entity.Turn{
		Id:             r.nextId,
		SessionId:      turn.SessionId,
		Role:           turn.Role,
		Content:        turn.Content,
		SourceChunkIds: append([]int64(nil), turn.SourceChunkIds...),
		Ts:             ts,
	}
	r.bySession[turn.SessionId] = append(turns, stored)

	turn.Id = stored.Id
	turn.Ts = stored.Ts
	return nil
}

func (r *TurnRepository) FindBySession(ctx context.Context, sessionId string, limit, offset int) ([]*entity.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	turns := r.bySession[sessionId]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(turns) {
		return []*entity.Turn{}, nil
	}
	end := len(turns)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*entity.Turn, 0, end-offset)
	for i := offset; i < end; i++ {
		t := turns[i]
		out = append(out, &t)
	}
	return out, nil
}

func (r *TurnRepository) CountBySession(ctx context.Context, sessionId string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bySession[sessionId])), nil
}
