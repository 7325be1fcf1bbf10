package repos

import (
	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos/taxonomy"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

type VocabularyRepo = taxonomy.VocabularyRepo
type TermRepo = taxonomy.TermRepo
type TermLocaleRepo = taxonomy.TermLocaleRepo

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return taxonomy.NewVocabularyRepo(db, baseLog)
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return taxonomy.NewTermRepo(db, baseLog)
}

func NewTermLocaleRepo(db *gorm.DB, baseLog *logger.Logger) TermLocaleRepo {
	return taxonomy.NewTermLocaleRepo(db, baseLog)
}
