package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Library is a flat grouping of assets. It is not part of the catalog
// tree and carries no contributor set; it only serves as an alternate
// hierarchy-membership filter source.
type Library struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name       string     `gorm:"column:name;not null;index" json:"name"`
	PartnerRef *uuid.UUID `gorm:"type:uuid;column:partner_ref;index" json:"partner_ref,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Library) TableName() string { return "library" }

// LibraryAsset is an unordered asset reference on a library. Like
// section_asset it has no asset foreign key, so dangling references are
// representable and excluded at read time.
type LibraryAsset struct {
	LibraryID uuid.UUID `gorm:"type:uuid;column:library_id;primaryKey" json:"library_id"`
	AssetID   uuid.UUID `gorm:"type:uuid;column:asset_id;primaryKey;index" json:"asset_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (LibraryAsset) TableName() string { return "library_asset" }
