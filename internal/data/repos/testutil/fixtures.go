package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/slugify"
)

func SeedVocabulary(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Vocabulary {
	tb.Helper()
	v := &types.Vocabulary{
		Name: name,
		Slug: slugify.Make(name),
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vocabulary: %v", err)
	}
	return v
}

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, vocabularyID int64, name string, parentID *int64) *types.Term {
	tb.Helper()
	t := &types.Term{
		VocabularyID: vocabularyID,
		ParentID:     parentID,
		Name:         name,
		Slug:         slugify.Make(name),
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return t
}

func SeedTermLocale(tb testing.TB, ctx context.Context, tx *gorm.DB, termID int64, locale, name, description string) *types.TermLocale {
	tb.Helper()
	tl := &types.TermLocale{
		TermID:      termID,
		Locale:      locale,
		Name:        name,
		Description: description,
	}
	if err := tx.WithContext(ctx).Create(tl).Error; err != nil {
		tb.Fatalf("seed term locale: %v", err)
	}
	return tl
}

// SeedConsumerTable creates a throwaway table holding references to
// taxonomy terms, for exercising the usage aggregator.
func SeedConsumerTable(tb testing.TB, ctx context.Context, tx *gorm.DB, table string) {
	tb.Helper()
	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, taxonomy_term_id INTEGER)`,
		table,
	)
	if err := tx.WithContext(ctx).Exec(stmt).Error; err != nil {
		tb.Fatalf("seed consumer table %s: %v", table, err)
	}
}

// SeedConsumerRef inserts n rows referencing termID into a consumer table.
func SeedConsumerRef(tb testing.TB, ctx context.Context, tx *gorm.DB, table string, termID int64, n int) {
	tb.Helper()
	stmt := fmt.Sprintf(`INSERT INTO %s (taxonomy_term_id) VALUES (?)`, table)
	for i := 0; i < n; i++ {
		if err := tx.WithContext(ctx).Exec(stmt, termID).Error; err != nil {
			tb.Fatalf("seed consumer ref in %s: %v", table, err)
		}
	}
}
