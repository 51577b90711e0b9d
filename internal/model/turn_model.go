package model

import (
	"time"

	"gorm.io/datatypes"
)

type Turn struct {
	Id             int64          `gorm:"primaryKey;autoIncrement"`
	SessionId      string         `gorm:"type:text;not null;index:idx_turns_session_ts,priority:1"`
	Role           string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text;not null"`
	SourceChunkIds datatypes.JSON `gorm:"type:jsonb"`
	Ts             time.Time      `gorm:"autoCreateTime;index:idx_turns_session_ts,priority:2"`
}

func (Turn) TableName() string {
	return "turns"
}
