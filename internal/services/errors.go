package services

import (
	goerrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/errors"
)

// MapError translates persistence failures into the taxonomy error
// sentinels. Already-typed errors pass through; anything unrecognized
// propagates unchanged, with no retry logic at any layer.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case goerrors.Is(err, errors.ErrValidation),
		goerrors.Is(err, errors.ErrNotFound),
		goerrors.Is(err, errors.ErrConflict),
		goerrors.Is(err, errors.ErrInvalidArgument):
		return err
	case goerrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFoundf("%v", err)
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return errors.Conflictf("%v", err)
		case "23503": // foreign_key_violation
			return errors.Validationf("%v", err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return errors.Conflictf("%v", err)
	}

	return err
}
