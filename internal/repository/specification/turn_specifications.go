package specification

import "gorm.io/gorm"

// BySessionID filters turns of one conversation
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// InsertionOrder orders by timestamp, falling back to id for equal timestamps
type InsertionOrder struct{}

func (s InsertionOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("ts ASC").Order("id ASC")
}
