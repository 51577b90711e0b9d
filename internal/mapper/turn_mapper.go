package mapper

import (
	"encoding/json"
	"fmt"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/model"

	"gorm.io/datatypes"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

// ToEntity fails when source_chunk_ids does not hold a JSON array of integers.
func (m *TurnMapper) ToEntity(t *model.Turn) (*entity.Turn, error) {
	if t == nil {
		return nil, nil
	}

	var sources []int64
	if len(t.SourceChunkIds) > 0 {
		if err := json.Unmarshal(t.SourceChunkIds, &sources); err != nil {
			return nil, fmt.Errorf("turn %d: decode source_chunk_ids: %w", t.Id, err)
		}
	}

	return &entity.Turn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Role:           t.Role,
		Content:        t.Content,
		SourceChunkIds: sources,
		Ts:             t.Ts,
	}, nil
}

func (m *TurnMapper) ToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	var sources datatypes.JSON
	if len(t.SourceChunkIds) > 0 {
		raw, _ := json.Marshal(t.SourceChunkIds)
		sources = datatypes.JSON(raw)
	}

	return &model.Turn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Role:           t.Role,
		Content:        t.Content,
		SourceChunkIds: sources,
		Ts:             t.Ts,
	}
}

func (m *TurnMapper) ToEntities(turns []*model.Turn) ([]*entity.Turn, error) {
	entities := make([]*entity.Turn, len(turns))
	for i, t := range turns {
		e, err := m.ToEntity(t)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
