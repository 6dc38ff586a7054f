package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset is a leaf media item. It is owned and mutated by the ingest
// subsystem; the catalog core reads its identity and PartnerCode and
// queries the rest (publish status, facets) through the search repo.
type Asset struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Duration    float64   `gorm:"column:duration" json:"duration"`

	// Originating content partner code; empty when the source is unknown.
	PartnerCode string `gorm:"column:partner_code;index" json:"partner_code,omitempty"`

	PublishStatus datatypes.JSON `gorm:"column:publish_status;type:jsonb" json:"publish_status,omitempty"`
	MdFacet       datatypes.JSON `gorm:"column:md_facet;type:jsonb" json:"md_facet,omitempty"`
	Renditions    datatypes.JSON `gorm:"column:renditions;type:jsonb" json:"renditions,omitempty"`

	IngestDate   *time.Time `gorm:"column:ingest_date" json:"ingest_date,omitempty"`
	LastModified *time.Time `gorm:"column:last_modified" json:"last_modified,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }
