package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Catalog is a root node of the section tree. ContributorIDs is derived
// state: it is only ever written by the aggregation service, never by
// callers.
type Catalog struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	PosterImage string    `gorm:"column:poster_image" json:"poster_image,omitempty"`

	// Party ids aggregated from every asset in the subtree, stored as a
	// jsonb array of uuid strings.
	ContributorIDs datatypes.JSON `gorm:"column:contributor_ids;type:jsonb" json:"contributor_ids,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Catalog) TableName() string { return "catalog" }
