package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Section is an interior node of the catalog tree. Exactly one of
// CatalogRef/ParentRef is set once the section is attached: sections
// hanging directly off a catalog carry CatalogRef, nested sections carry
// ParentRef. Child order is SeqNo ascending.
type Section struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CatalogRef  *uuid.UUID `gorm:"type:uuid;column:catalog_ref;index" json:"catalog_ref,omitempty"`
	ParentRef   *uuid.UUID `gorm:"type:uuid;column:parent_ref;index" json:"parent_ref,omitempty"`
	Name        string     `gorm:"column:name;not null;index" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	SeqNo       int        `gorm:"column:seq_no;not null;default:0" json:"seq_no"`
	PosterImage string     `gorm:"column:poster_image" json:"poster_image,omitempty"`

	// Derived, written only by the aggregation service.
	ContributorIDs datatypes.JSON `gorm:"column:contributor_ids;type:jsonb" json:"contributor_ids,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Section) TableName() string { return "section" }

// SectionAsset is an ordered asset reference on a section. There is
// deliberately no foreign key to asset: references to assets that no
// longer exist are tolerated and excluded during resolution.
type SectionAsset struct {
	SectionID uuid.UUID `gorm:"type:uuid;column:section_id;primaryKey" json:"section_id"`
	AssetID   uuid.UUID `gorm:"type:uuid;column:asset_id;primaryKey;index" json:"asset_id"`
	SeqNo     int       `gorm:"column:seq_no;not null;default:0" json:"seq_no"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SectionAsset) TableName() string { return "section_asset" }
