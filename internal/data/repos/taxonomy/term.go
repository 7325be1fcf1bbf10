package taxonomy

import (
	"context"

	"gorm.io/gorm"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

type TermRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Term) (*types.Term, error)

	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Term, error)
	// GetByName looks a term up by exact name. A zero vocabularyID leaves
	// the lookup unscoped.
	GetByName(ctx context.Context, tx *gorm.DB, vocabularyID int64, name string) (*types.Term, error)
	// GetByNameLocalized matches the name against the localized view:
	// the locale's override where one exists, the base name elsewhere.
	GetByNameLocalized(ctx context.Context, tx *gorm.DB, vocabularyID int64, locale, name string) (*types.Term, error)

	ListByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID int64) ([]*types.Term, error)
	ListChildren(ctx context.Context, tx *gorm.DB, parentID int64) ([]*types.Term, error)
	SlugExistsInVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID int64, slug string) (bool, error)

	Update(ctx context.Context, tx *gorm.DB, row *types.Term) error
	// ReparentChildren moves every child of parentID under newParentID.
	ReparentChildren(ctx context.Context, tx *gorm.DB, parentID int64, newParentID *int64) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{db: db, log: baseLog.With("repo", "TermRepo")}
}

func (r *termRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Term) (*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *termRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Term
	if err := t.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *termRepo) GetByName(ctx context.Context, tx *gorm.DB, vocabularyID int64, name string) (*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Where("name = ?", name)
	if vocabularyID != 0 {
		q = q.Where("vocabulary_id = ?", vocabularyID)
	}
	var out []*types.Term
	if err := q.Order("id ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *termRepo) GetByNameLocalized(ctx context.Context, tx *gorm.DB, vocabularyID int64, locale, name string) (*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Model(&types.Term{}).
		Select("taxonomy_term.*").
		Joins("LEFT JOIN taxonomy_term_locale ON taxonomy_term_locale.term_id = taxonomy_term.id AND taxonomy_term_locale.locale = ?", locale).
		Where("COALESCE(taxonomy_term_locale.name, taxonomy_term.name) = ?", name)
	if vocabularyID != 0 {
		q = q.Where("taxonomy_term.vocabulary_id = ?", vocabularyID)
	}
	var out []*types.Term
	if err := q.Order("taxonomy_term.id ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *termRepo) ListByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID int64) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if vocabularyID == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("vocabulary_id = ?", vocabularyID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) ListChildren(ctx context.Context, tx *gorm.DB, parentID int64) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if parentID == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) SlugExistsInVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID int64, slug string) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).
		Model(&types.Term{}).
		Where("vocabulary_id = ? AND slug = ?", vocabularyID, slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *termRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Term) error {
	t := tx
	if t == nil {
		t = r.db
	}
	// Neither the slug nor the owning vocabulary is ever rewritten.
	return t.WithContext(ctx).
		Model(row).
		Select("name", "description", "parent_id", "weight", "extra", "updated_at").
		Updates(map[string]interface{}{
			"name":        row.Name,
			"description": row.Description,
			"parent_id":   row.ParentID,
			"weight":      row.Weight,
			"extra":       row.Extra,
		}).Error
}

func (r *termRepo) ReparentChildren(ctx context.Context, tx *gorm.DB, parentID int64, newParentID *int64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if parentID == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Term{}).
		Where("parent_id = ?", parentID).
		Update("parent_id", newParentID).Error
}

func (r *termRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Term{}).Error
}
