package dbmysql

import (
	"time"
)

// CascadeFailure is one dependent-record cleanup step that did not complete.
type CascadeFailure struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Entity    string    `gorm:"size:32;not null;column:entity;index:idx_cascade_entity"`
	EntityID  string    `gorm:"size:24;not null;column:entity_id;index:idx_cascade_entity"`
	Step      string    `gorm:"size:32;not null;column:step"`
	Target    string    `gorm:"size:255;column:target"` // object id for storage steps
	LastError string    `gorm:"type:text;column:last_error"`
	Attempts  int       `gorm:"not null;column:attempts"`
	Resolved  bool      `gorm:"not null;column:resolved;index:idx_cascade_pending"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (CascadeFailure) TableName() string {
	return "cascade_failures"
}
