package entity

import "time"

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

type Turn struct {
	Id             int64
	SessionId      string
	Role           string
	Content        string
	SourceChunkIds []int64 // assistant turns only
	Ts             time.Time
}
