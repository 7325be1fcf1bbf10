package services

import (
	"context"
	"iter"
	"strings"

	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/errors"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/slugify"
)

const listPageSize = 100

// VocabularyService manages the named tag namespaces. All methods accept
// an optional transaction handle; a nil tx runs against the base
// connection, so callers own the transaction boundary.
type VocabularyService interface {
	Create(ctx context.Context, tx *gorm.DB, name string) (*types.Vocabulary, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Vocabulary, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Vocabulary, error)
	Save(ctx context.Context, tx *gorm.DB, vocabulary *types.Vocabulary) error
	Delete(ctx context.Context, tx *gorm.DB, vocabulary *types.Vocabulary) error

	// List yields vocabularies ordered by name ascending. The sequence is
	// lazy and restartable: each range issues fresh page queries.
	List(ctx context.Context, tx *gorm.DB) iter.Seq2[*types.Vocabulary, error]
}

type vocabularyService struct {
	vocabularies repos.VocabularyRepo
	log          *logger.Logger
}

func NewVocabularyService(vocabularies repos.VocabularyRepo, baseLog *logger.Logger) VocabularyService {
	return &vocabularyService{
		vocabularies: vocabularies,
		log:          baseLog.With("service", "VocabularyService"),
	}
}

func (s *vocabularyService) Create(ctx context.Context, tx *gorm.DB, name string) (*types.Vocabulary, error) {
	vocabulary := &types.Vocabulary{Name: name}
	if err := s.Save(ctx, tx, vocabulary); err != nil {
		return nil, err
	}
	return vocabulary, nil
}

func (s *vocabularyService) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Vocabulary, error) {
	vocabulary, err := s.vocabularies.GetByID(ctx, tx, id)
	if err != nil {
		return nil, MapError(err)
	}
	if vocabulary == nil {
		return nil, errors.NotFoundf("vocabulary %d", id)
	}
	return vocabulary, nil
}

func (s *vocabularyService) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Vocabulary, error) {
	vocabulary, err := s.vocabularies.GetBySlug(ctx, tx, slug)
	if err != nil {
		return nil, MapError(err)
	}
	if vocabulary == nil {
		return nil, errors.NotFoundf("vocabulary %q", slug)
	}
	return vocabulary, nil
}

func (s *vocabularyService) Save(ctx context.Context, tx *gorm.DB, vocabulary *types.Vocabulary) error {
	if vocabulary == nil {
		return errors.InvalidArgumentf("vocabulary is nil")
	}

	vocabulary.Name = strings.TrimSpace(vocabulary.Name)
	if vocabulary.Name == "" {
		return errors.Validationf("vocabulary name is required")
	}

	if vocabulary.ID != 0 {
		// The slug was assigned on first save and stays as it is.
		return MapError(s.vocabularies.Update(ctx, tx, vocabulary))
	}

	if vocabulary.Slug == "" {
		slug := slugify.Make(vocabulary.Name)
		if slug == "" {
			return errors.Validationf("vocabulary name %q does not produce a slug", vocabulary.Name)
		}
		vocabulary.Slug = slug
	}

	exists, err := s.vocabularies.SlugExists(ctx, tx, vocabulary.Slug)
	if err != nil {
		return MapError(err)
	}
	if exists {
		return errors.Conflictf("vocabulary slug %q already exists", vocabulary.Slug)
	}

	if _, err := s.vocabularies.Create(ctx, tx, vocabulary); err != nil {
		return MapError(err)
	}
	s.log.Debug("created vocabulary", "id", vocabulary.ID, "slug", vocabulary.Slug)
	return nil
}

// Delete removes a vocabulary. Deletion is restricted while the
// vocabulary still owns terms; callers wanting a cascade must delete the
// terms first.
func (s *vocabularyService) Delete(ctx context.Context, tx *gorm.DB, vocabulary *types.Vocabulary) error {
	if vocabulary == nil || vocabulary.ID == 0 {
		return errors.InvalidArgumentf("vocabulary is not persisted")
	}
	count, err := s.vocabularies.CountTerms(ctx, tx, vocabulary.ID)
	if err != nil {
		return MapError(err)
	}
	if count > 0 {
		return errors.Validationf("vocabulary %q still has %d terms", vocabulary.Name, count)
	}
	return MapError(s.vocabularies.DeleteByID(ctx, tx, vocabulary.ID))
}

func (s *vocabularyService) List(ctx context.Context, tx *gorm.DB) iter.Seq2[*types.Vocabulary, error] {
	return func(yield func(*types.Vocabulary, error) bool) {
		offset := 0
		for {
			page, err := s.vocabularies.ListOrderedByName(ctx, tx, offset, listPageSize)
			if err != nil {
				yield(nil, MapError(err))
				return
			}
			for _, vocabulary := range page {
				if !yield(vocabulary, nil) {
					return
				}
			}
			if len(page) < listPageSize {
				return
			}
			offset += len(page)
		}
	}
}
