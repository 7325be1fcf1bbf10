package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

type vocabularyRefKind int

const (
	vocabularyRefNone vocabularyRefKind = iota
	vocabularyRefID
	vocabularyRefSlug
	vocabularyRefValue
)

// VocabularyRef names a vocabulary by id, by slug, or by an already
// resolved value. It replaces dynamic object-or-id-or-slug branching
// with one tagged variant, normalized to a numeric id at the store
// boundary. The zero value leaves term lookups unscoped.
type VocabularyRef struct {
	kind       vocabularyRefKind
	id         int64
	slug       string
	vocabulary *types.Vocabulary
}

func VocabularyByID(id int64) VocabularyRef {
	return VocabularyRef{kind: vocabularyRefID, id: id}
}

func VocabularyBySlug(slug string) VocabularyRef {
	return VocabularyRef{kind: vocabularyRefSlug, slug: slug}
}

func VocabularyValue(vocabulary *types.Vocabulary) VocabularyRef {
	if vocabulary == nil {
		return VocabularyRef{}
	}
	return VocabularyRef{kind: vocabularyRefValue, id: vocabulary.ID, vocabulary: vocabulary}
}

func (r VocabularyRef) IsZero() bool { return r.kind == vocabularyRefNone }

// ResolvedTag pairs a trimmed input tag with its term. The term is
// either persisted or staged: populated but unsaved, with a zero ID, for
// the caller to persist alongside the record referencing it.
type ResolvedTag struct {
	Tag  string
	Term *types.Term
}

// TagResolver maps free-text tag strings to terms within a fixed
// (vocabulary, locale) scope.
type TagResolver interface {
	// ResolveTags trims, deduplicates (case-sensitive, first occurrence
	// wins), and resolves each distinct tag to an existing term or a
	// staged new one, preserving first-seen order.
	//
	// Two concurrent callers resolving the same unknown tag can each
	// stage a new term; exactly-once creation needs a uniqueness
	// constraint on (name, vocabulary) in the database.
	ResolveTags(ctx context.Context, tx *gorm.DB, tags []string, ref VocabularyRef, locale string) ([]ResolvedTag, error)
}

type tagResolver struct {
	vocabularies repos.VocabularyRepo
	terms        repos.TermRepo
	locales      repos.TermLocaleRepo
	log          *logger.Logger
}

func NewTagResolver(vocabularies repos.VocabularyRepo, terms repos.TermRepo, locales repos.TermLocaleRepo, baseLog *logger.Logger) TagResolver {
	return &tagResolver{
		vocabularies: vocabularies,
		terms:        terms,
		locales:      locales,
		log:          baseLog.With("service", "TagResolver"),
	}
}

func (s *tagResolver) ResolveTags(ctx context.Context, tx *gorm.DB, tags []string, ref VocabularyRef, locale string) ([]ResolvedTag, error) {
	log := s.log.With("resolve_id", uuid.NewString())

	scope, err := s.resolveRef(ctx, tx, ref)
	if err != nil {
		return nil, err
	}

	resolved := []ResolvedTag{}
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true

		var term *types.Term
		if scope.resolved {
			term, err = s.lookup(ctx, tx, tag, scope.vocabularyID, locale)
			if err != nil {
				return nil, MapError(err)
			}
		}
		if term == nil {
			// An unresolvable slug scope stages the term with the
			// vocabulary unset; the caller must handle it before
			// persisting.
			term = &types.Term{Name: tag, VocabularyID: scope.vocabularyID}
			log.Debug("staged new term", "tag", tag, "vocabulary_id", term.VocabularyID)
		} else if locale != "" {
			override, err := s.locales.Get(ctx, tx, term.ID, locale)
			if err != nil {
				return nil, MapError(err)
			}
			if override != nil {
				term.Name = override.Name
				term.Description = override.Description
			}
			term.Locale = locale
		}

		resolved = append(resolved, ResolvedTag{Tag: tag, Term: term})
	}

	log.Debug("resolved tags", "input", len(tags), "distinct", len(resolved))
	return resolved, nil
}

type vocabularyScope struct {
	vocabularyID int64
	// resolved is false when a slug reference matched no vocabulary;
	// lookups against such a scope can never match anything.
	resolved bool
}

// resolveRef is the single point normalizing a VocabularyRef to a
// numeric id. A zero ref resolves to an unscoped lookup.
func (s *tagResolver) resolveRef(ctx context.Context, tx *gorm.DB, ref VocabularyRef) (vocabularyScope, error) {
	switch ref.kind {
	case vocabularyRefID, vocabularyRefValue:
		return vocabularyScope{vocabularyID: ref.id, resolved: true}, nil
	case vocabularyRefSlug:
		vocabulary, err := s.vocabularies.GetBySlug(ctx, tx, ref.slug)
		if err != nil {
			return vocabularyScope{}, MapError(err)
		}
		if vocabulary == nil {
			return vocabularyScope{}, nil
		}
		return vocabularyScope{vocabularyID: vocabulary.ID, resolved: true}, nil
	default:
		return vocabularyScope{resolved: true}, nil
	}
}

func (s *tagResolver) lookup(ctx context.Context, tx *gorm.DB, name string, vocabularyID int64, locale string) (*types.Term, error) {
	if locale != "" {
		return s.terms.GetByNameLocalized(ctx, tx, vocabularyID, locale, name)
	}
	return s.terms.GetByName(ctx, tx, vocabularyID, name)
}
