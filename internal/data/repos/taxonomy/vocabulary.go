package taxonomy

import (
	"context"

	"gorm.io/gorm"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

type VocabularyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) (*types.Vocabulary, error)

	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Vocabulary, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Vocabulary, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)

	// ListOrderedByName returns one page of vocabularies ordered by name
	// ascending. The lazy iterator in the service layer pages over it.
	ListOrderedByName(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Vocabulary, error)

	Update(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error

	CountTerms(ctx context.Context, tx *gorm.DB, vocabularyID int64) (int64, error)
}

type vocabularyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return &vocabularyRepo{db: db, log: baseLog.With("repo", "VocabularyRepo")}
}

func (r *vocabularyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) (*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *vocabularyRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Vocabulary
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

func (r *vocabularyRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var out []*types.Vocabulary
	if err := t.WithContext(ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *vocabularyRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).
		Model(&types.Vocabulary{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *vocabularyRepo) ListOrderedByName(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Vocabulary
	if err := t.WithContext(ctx).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) error {
	t := tx
	if t == nil {
		t = r.db
	}
	// The slug column is never written after creation.
	return t.WithContext(ctx).
		Model(row).
		Select("name", "description", "extra", "updated_at").
		Updates(map[string]interface{}{
			"name":        row.Name,
			"description": row.Description,
			"extra":       row.Extra,
		}).Error
}

func (r *vocabularyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Vocabulary{}).Error
}

func (r *vocabularyRepo) CountTerms(ctx context.Context, tx *gorm.DB, vocabularyID int64) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).
		Model(&types.Term{}).
		Where("vocabulary_id = ?", vocabularyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
