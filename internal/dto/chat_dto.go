package dto

import "time"

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id" validate:"max=128"`
}

type SourceDTO struct {
	Id       int64   `json:"id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type AskResponse struct {
	Answer    string      `json:"answer"`
	SessionId string      `json:"session_id"`
	Sources   []SourceDTO `json:"sources"`
}

type HistoryQuery struct {
	Limit  int `query:"limit" validate:"min=0,max=200"`
	Offset int `query:"offset" validate:"min=0"`
}

type TurnResponse struct {
	Id             int64     `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	SourceChunkIds []int64   `json:"source_chunk_ids,omitempty"`
	Ts             time.Time `json:"ts"`
}

type HistoryResponse struct {
	SessionId string          `json:"session_id"`
	Turns     []*TurnResponse `json:"turns"`
}
