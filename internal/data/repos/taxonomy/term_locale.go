package taxonomy

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

type TermLocaleRepo interface {
	Get(ctx context.Context, tx *gorm.DB, termID int64, locale string) (*types.TermLocale, error)
	// GetForTerms returns the overrides of one locale for a set of terms,
	// keyed by term id.
	GetForTerms(ctx context.Context, tx *gorm.DB, termIDs []int64, locale string) (map[int64]*types.TermLocale, error)
	ListLocales(ctx context.Context, tx *gorm.DB, termID int64) ([]string, error)

	Upsert(ctx context.Context, tx *gorm.DB, row *types.TermLocale) error
	// DeleteByTermAndLocale removes one locale's override and reports
	// whether one existed.
	DeleteByTermAndLocale(ctx context.Context, tx *gorm.DB, termID int64, locale string) (bool, error)
	DeleteByTerm(ctx context.Context, tx *gorm.DB, termID int64) error
}

type termLocaleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermLocaleRepo(db *gorm.DB, baseLog *logger.Logger) TermLocaleRepo {
	return &termLocaleRepo{db: db, log: baseLog.With("repo", "TermLocaleRepo")}
}

func (r *termLocaleRepo) Get(ctx context.Context, tx *gorm.DB, termID int64, locale string) (*types.TermLocale, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if termID == 0 || locale == "" {
		return nil, nil
	}
	var out []*types.TermLocale
	if err := t.WithContext(ctx).
		Where("term_id = ? AND locale = ?", termID, locale).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *termLocaleRepo) GetForTerms(ctx context.Context, tx *gorm.DB, termIDs []int64, locale string) (map[int64]*types.TermLocale, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := map[int64]*types.TermLocale{}
	if len(termIDs) == 0 || locale == "" {
		return out, nil
	}
	var rows []*types.TermLocale
	if err := t.WithContext(ctx).
		Where("term_id IN ? AND locale = ?", termIDs, locale).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TermID] = row
	}
	return out, nil
}

func (r *termLocaleRepo) ListLocales(ctx context.Context, tx *gorm.DB, termID int64) ([]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []string
	if termID == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Model(&types.TermLocale{}).
		Where("term_id = ?", termID).
		Order("locale ASC").
		Pluck("locale", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termLocaleRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TermLocale) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "term_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
		}).
		Create(row).Error
}

func (r *termLocaleRepo) DeleteByTermAndLocale(ctx context.Context, tx *gorm.DB, termID int64, locale string) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if termID == 0 || locale == "" {
		return false, nil
	}
	res := t.WithContext(ctx).
		Where("term_id = ? AND locale = ?", termID, locale).
		Delete(&types.TermLocale{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *termLocaleRepo) DeleteByTerm(ctx context.Context, tx *gorm.DB, termID int64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if termID == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("term_id = ?", termID).
		Delete(&types.TermLocale{}).Error
}
