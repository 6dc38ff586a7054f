package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Party is a content partner. Assets reference a party by Code, not id;
// the aggregation service maps codes to ids at aggregation time.
type Party struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name string    `gorm:"column:name;not null;index" json:"name"`

	// Alternate display names, jsonb array of strings.
	AltNames datatypes.JSON `gorm:"column:alt_names;type:jsonb" json:"alt_names,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Party) TableName() string { return "party" }
