package domain

import (
	"time"
)

// BaseModel carries the audit timestamps shared by mutable rows
type BaseModel struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBaseModel stamps both timestamps with the current UTC time
func NewBaseModel() BaseModel {
	now := time.Now().UTC()
	return BaseModel{CreatedAt: now, UpdatedAt: now}
}

// Touch advances UpdatedAt
func (b *BaseModel) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
