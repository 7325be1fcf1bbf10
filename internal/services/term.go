package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/errors"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/slugify"
)

// TreeOrder selects the ordering within each sibling group of a tree.
type TreeOrder string

const (
	TreeOrderName   TreeOrder = "name"
	TreeOrderWeight TreeOrder = "weight"
)

// TreeOptions shapes a TaxonomyTree listing.
type TreeOptions struct {
	// RootParentID starts the listing at the children of this term.
	// Nil lists the whole forest from the roots.
	RootParentID *int64
	// Locale overlays each entry's label with that locale's override.
	Locale string
	// OrderBy is the sibling ordering, weight when unset.
	OrderBy TreeOrder
	// ExcludeTermID leaves out that term and its whole subtree, so a
	// term being edited never appears as its own parent candidate.
	ExcludeTermID int64
}

// TreeEntry is one row of a flattened depth-first tree listing. The
// label carries a prefix reflecting the entry's nesting depth.
type TreeEntry struct {
	TermID int64
	Label  string
}

// TermService manages hierarchical, localizable terms. Methods accept an
// optional transaction handle; nil runs against the base connection,
// with multi-write operations opening their own transaction.
type TermService interface {
	Create(ctx context.Context, tx *gorm.DB, name string, vocabularyID int64, parentID *int64) (*types.Term, error)

	// GetByID fetches a term. A non-empty locale returns the localized
	// view: override fields where present, base fields elsewhere. An
	// empty locale returns the base record.
	GetByID(ctx context.Context, tx *gorm.DB, id int64, locale string) (*types.Term, error)

	// Save persists a term. When the term carries a locale, localizable
	// fields go to that locale's override row and only shared attributes
	// (parent, weight, extra) touch the base record.
	Save(ctx context.Context, tx *gorm.DB, term *types.Term) error

	// Delete removes the term with all locale variants. Children are
	// adopted by the deleted term's parent.
	Delete(ctx context.Context, tx *gorm.DB, term *types.Term) error

	// DeleteLocalized removes one locale's override, reporting whether
	// one existed. The base term and other locales remain.
	DeleteLocalized(ctx context.Context, tx *gorm.DB, term *types.Term, locale string) (bool, error)

	Locales(ctx context.Context, tx *gorm.DB, termID int64) ([]string, error)

	TaxonomyTree(ctx context.Context, tx *gorm.DB, vocabularyID int64, opts TreeOptions) ([]TreeEntry, error)
}

type termService struct {
	db      *gorm.DB
	terms   repos.TermRepo
	locales repos.TermLocaleRepo
	log     *logger.Logger
}

func NewTermService(db *gorm.DB, terms repos.TermRepo, locales repos.TermLocaleRepo, baseLog *logger.Logger) TermService {
	return &termService{
		db:      db,
		terms:   terms,
		locales: locales,
		log:     baseLog.With("service", "TermService"),
	}
}

func (s *termService) withTx(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *termService) Create(ctx context.Context, tx *gorm.DB, name string, vocabularyID int64, parentID *int64) (*types.Term, error) {
	term := &types.Term{
		Name:         name,
		VocabularyID: vocabularyID,
		ParentID:     parentID,
	}
	if err := s.Save(ctx, tx, term); err != nil {
		return nil, err
	}
	return term, nil
}

func (s *termService) GetByID(ctx context.Context, tx *gorm.DB, id int64, locale string) (*types.Term, error) {
	term, err := s.terms.GetByID(ctx, tx, id)
	if err != nil {
		return nil, MapError(err)
	}
	if term == nil {
		return nil, errors.NotFoundf("term %d", id)
	}
	if locale == "" {
		return term, nil
	}

	override, err := s.locales.Get(ctx, tx, term.ID, locale)
	if err != nil {
		return nil, MapError(err)
	}
	if override != nil {
		term.Name = override.Name
		term.Description = override.Description
	}
	term.Locale = locale
	return term, nil
}

func (s *termService) Save(ctx context.Context, tx *gorm.DB, term *types.Term) error {
	if term == nil {
		return errors.InvalidArgumentf("term is nil")
	}

	term.Name = strings.TrimSpace(term.Name)
	if term.Name == "" {
		return errors.Validationf("term name is required")
	}
	if term.VocabularyID == 0 {
		return errors.Validationf("term requires a vocabulary")
	}

	var base *types.Term
	if term.ID != 0 {
		existing, err := s.terms.GetByID(ctx, tx, term.ID)
		if err != nil {
			return MapError(err)
		}
		if existing == nil {
			return errors.NotFoundf("term %d", term.ID)
		}
		if existing.VocabularyID != term.VocabularyID {
			return errors.Validationf("term %d cannot move from vocabulary %d to %d",
				term.ID, existing.VocabularyID, term.VocabularyID)
		}
		base = existing
	}

	if err := s.validateParent(ctx, tx, term); err != nil {
		return err
	}

	return s.withTx(ctx, tx, func(tx *gorm.DB) error {
		if term.ID == 0 {
			if term.Slug == "" {
				slug, err := s.uniqueSlug(ctx, tx, term.VocabularyID, term.Name)
				if err != nil {
					return err
				}
				term.Slug = slug
			}
			if _, err := s.terms.Create(ctx, tx, term); err != nil {
				return MapError(err)
			}
			if term.Locale != "" {
				// First save of a localized view seeds the base fields
				// and the locale override with the same values.
				if err := s.upsertLocale(ctx, tx, term); err != nil {
					return err
				}
			}
			s.log.Debug("created term",
				"id", term.ID, "vocabulary_id", term.VocabularyID, "slug", term.Slug)
			return nil
		}

		if term.Locale != "" {
			if err := s.upsertLocale(ctx, tx, term); err != nil {
				return err
			}
			base.ParentID = term.ParentID
			base.Weight = term.Weight
			base.Extra = term.Extra
			return MapError(s.terms.Update(ctx, tx, base))
		}
		return MapError(s.terms.Update(ctx, tx, term))
	})
}

func (s *termService) upsertLocale(ctx context.Context, tx *gorm.DB, term *types.Term) error {
	return MapError(s.locales.Upsert(ctx, tx, &types.TermLocale{
		TermID:      term.ID,
		Locale:      term.Locale,
		Name:        term.Name,
		Description: term.Description,
	}))
}

// validateParent enforces the hierarchy invariants: a parent must exist
// in the same vocabulary, cannot be the term itself, and cannot close a
// cycle. The ancestor chain of the proposed parent is walked on every
// assignment.
func (s *termService) validateParent(ctx context.Context, tx *gorm.DB, term *types.Term) error {
	if term.ParentID == nil {
		return nil
	}
	parentID := *term.ParentID
	if term.ID != 0 && parentID == term.ID {
		return errors.Validationf("term %d cannot be its own parent", term.ID)
	}

	parent, err := s.terms.GetByID(ctx, tx, parentID)
	if err != nil {
		return MapError(err)
	}
	if parent == nil {
		return errors.Validationf("parent term %d does not exist", parentID)
	}
	if parent.VocabularyID != term.VocabularyID {
		return errors.Validationf("parent term %d belongs to vocabulary %d, not %d",
			parent.ID, parent.VocabularyID, term.VocabularyID)
	}

	seen := map[int64]bool{parent.ID: true}
	for current := parent; current.ParentID != nil; {
		ancestorID := *current.ParentID
		if term.ID != 0 && ancestorID == term.ID {
			return errors.Validationf("term %d is an ancestor of parent term %d, cycle rejected",
				term.ID, parentID)
		}
		if seen[ancestorID] {
			return errors.Validationf("ancestor chain of term %d already contains a cycle", parentID)
		}
		seen[ancestorID] = true

		next, err := s.terms.GetByID(ctx, tx, ancestorID)
		if err != nil {
			return MapError(err)
		}
		if next == nil {
			break
		}
		current = next
	}
	return nil
}

func (s *termService) uniqueSlug(ctx context.Context, tx *gorm.DB, vocabularyID int64, name string) (string, error) {
	base := slugify.Make(name)
	if base == "" {
		base = "term"
	}
	slug := base
	for i := 2; ; i++ {
		exists, err := s.terms.SlugExistsInVocabulary(ctx, tx, vocabularyID, slug)
		if err != nil {
			return "", MapError(err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *termService) Delete(ctx context.Context, tx *gorm.DB, term *types.Term) error {
	if term == nil || term.ID == 0 {
		return errors.InvalidArgumentf("term is not persisted")
	}
	return s.withTx(ctx, tx, func(tx *gorm.DB) error {
		if err := s.terms.ReparentChildren(ctx, tx, term.ID, term.ParentID); err != nil {
			return MapError(err)
		}
		if err := s.locales.DeleteByTerm(ctx, tx, term.ID); err != nil {
			return MapError(err)
		}
		return MapError(s.terms.DeleteByID(ctx, tx, term.ID))
	})
}

func (s *termService) DeleteLocalized(ctx context.Context, tx *gorm.DB, term *types.Term, locale string) (bool, error) {
	if term == nil || term.ID == 0 {
		return false, errors.InvalidArgumentf("term is not persisted")
	}
	if locale == "" {
		return false, errors.Validationf("locale is required for a localized delete")
	}
	removed, err := s.locales.DeleteByTermAndLocale(ctx, tx, term.ID, locale)
	if err != nil {
		return false, MapError(err)
	}
	return removed, nil
}

func (s *termService) Locales(ctx context.Context, tx *gorm.DB, termID int64) ([]string, error) {
	out, err := s.locales.ListLocales(ctx, tx, termID)
	if err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func (s *termService) TaxonomyTree(ctx context.Context, tx *gorm.DB, vocabularyID int64, opts TreeOptions) ([]TreeEntry, error) {
	if vocabularyID == 0 {
		return nil, errors.InvalidArgumentf("vocabulary is required for a tree listing")
	}

	terms, err := s.terms.ListByVocabulary(ctx, tx, vocabularyID)
	if err != nil {
		return nil, MapError(err)
	}

	if opts.Locale != "" {
		ids := make([]int64, 0, len(terms))
		for _, term := range terms {
			ids = append(ids, term.ID)
		}
		overrides, err := s.locales.GetForTerms(ctx, tx, ids, opts.Locale)
		if err != nil {
			return nil, MapError(err)
		}
		for _, term := range terms {
			if override, ok := overrides[term.ID]; ok {
				term.Name = override.Name
				term.Description = override.Description
			}
			term.Locale = opts.Locale
		}
	}

	// Group siblings by parent; key 0 holds the roots.
	children := map[int64][]*types.Term{}
	for _, term := range terms {
		key := int64(0)
		if term.ParentID != nil {
			key = *term.ParentID
		}
		children[key] = append(children[key], term)
	}
	for _, group := range children {
		sortSiblings(group, opts.OrderBy)
	}

	rootKey := int64(0)
	if opts.RootParentID != nil {
		rootKey = *opts.RootParentID
	}

	entries := []TreeEntry{}
	visited := map[int64]bool{}
	var walk func(parentKey int64, depth int)
	walk = func(parentKey int64, depth int) {
		for _, term := range children[parentKey] {
			if term.ID == opts.ExcludeTermID {
				continue
			}
			if visited[term.ID] {
				// Corrupt parent data would otherwise loop forever.
				continue
			}
			visited[term.ID] = true
			entries = append(entries, TreeEntry{
				TermID: term.ID,
				Label:  strings.Repeat("- ", depth) + term.Name,
			})
			walk(term.ID, depth+1)
		}
	}
	walk(rootKey, 0)

	return entries, nil
}

func sortSiblings(group []*types.Term, orderBy TreeOrder) {
	switch orderBy {
	case TreeOrderName:
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Name != group[j].Name {
				return group[i].Name < group[j].Name
			}
			return group[i].ID < group[j].ID
		})
	default:
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Weight != group[j].Weight {
				return group[i].Weight < group[j].Weight
			}
			if group[i].Name != group[j].Name {
				return group[i].Name < group[j].Name
			}
			return group[i].ID < group[j].ID
		})
	}
}
