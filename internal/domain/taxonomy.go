package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Vocabulary is a named namespace grouping a set of terms.
//
// The slug is derived from the name on first save and never regenerated,
// even when the name changes later.
type Vocabulary struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description,omitempty"`

	// Extra holds scaffold-defined dynamic fields.
	Extra datatypes.JSONMap `json:"extra,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Vocabulary) TableName() string { return "taxonomy_vocabulary" }

// Term is a single taxonomy entry scoped to one vocabulary. Terms form a
// forest: an optional parent reference to another term in the same
// vocabulary. Name and Description are the locale fallback values; per
// locale overrides live in TermLocale rows.
type Term struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	VocabularyID int64  `gorm:"not null;index:idx_term_vocabulary_slug,unique,priority:1;index:idx_term_vocabulary_name,priority:1" json:"vocabulary_id"`
	ParentID     *int64 `gorm:"index" json:"parent_id,omitempty"`
	Name         string `gorm:"not null;index:idx_term_vocabulary_name,priority:2" json:"name"`
	Description  string `json:"description,omitempty"`
	Slug         string `gorm:"not null;index:idx_term_vocabulary_slug,unique,priority:2" json:"slug"`

	// Weight is a sort hint when set by an editor and a derived popularity
	// score when computed for cloud display. The computed value is not
	// persisted unless the caller saves the term explicitly.
	Weight int `gorm:"not null;default:0" json:"weight"`

	// Extra holds scaffold-defined dynamic fields.
	Extra datatypes.JSONMap `json:"extra,omitempty"`

	// Locale records which localized view this instance represents.
	// Empty means the base record. Not persisted; it steers the save
	// path between base fields and a locale override row.
	Locale string `gorm:"-" json:"locale,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Term) TableName() string { return "taxonomy_term" }

func (t *Term) String() string { return t.Name }

// TermLocale is a per-locale override of a term's localizable fields,
// layered over the base record on fetch.
type TermLocale struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TermID      int64  `gorm:"not null;index:idx_term_locale,unique,priority:1" json:"term_id"`
	Locale      string `gorm:"not null;index:idx_term_locale,unique,priority:2" json:"locale"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TermLocale) TableName() string { return "taxonomy_term_locale" }
