package db

import (
	"fmt"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Vocabulary{},
		&types.Term{},
		&types.TermLocale{},
	); err != nil {
		return fmt.Errorf("auto migrate taxonomy models: %w", err)
	}
	return nil
}
