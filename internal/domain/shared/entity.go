package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable identity.
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity carries the identity and audit timestamps shared by every table.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// NewBaseEntity stamps a fresh random ID and the current time.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
