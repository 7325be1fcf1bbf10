package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos/testutil"
)

func newTagResolver(t *testing.T, db *gorm.DB) TagResolver {
	t.Helper()
	log := testutil.Logger(t)
	return NewTagResolver(
		repos.NewVocabularyRepo(db, log),
		repos.NewTermRepo(db, log),
		repos.NewTermLocaleRepo(db, log),
		log)
}

func TestResolveTags(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	resolver := newTagResolver(t, db)

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	red := testutil.SeedTerm(t, ctx, tx, colors.ID, "Red", nil)

	tags := []string{" Red ", "Blue", "", "Red", "red"}
	resolved, err := resolver.ResolveTags(ctx, tx, tags, VocabularyByID(colors.ID), "")
	if err != nil {
		t.Fatalf("ResolveTags: %v", err)
	}
	// Trimmed, empties dropped, case-sensitive dedupe keeping the first
	// occurrence, input order preserved.
	if len(resolved) != 3 {
		t.Fatalf("expected 3 resolved tags, got %+v", resolved)
	}
	for i, want := range []string{"Red", "Blue", "red"} {
		if resolved[i].Tag != want {
			t.Fatalf("unexpected tag order: %+v", resolved)
		}
	}

	if resolved[0].Term.ID != red.ID {
		t.Fatalf("existing term not matched: %+v", resolved[0].Term)
	}
	// Unknown tags come back staged: populated but unsaved.
	for _, i := range []int{1, 2} {
		staged := resolved[i].Term
		if staged.ID != 0 || staged.VocabularyID != colors.ID || staged.Name != resolved[i].Tag {
			t.Fatalf("unexpected staged term: %+v", staged)
		}
	}

	// Once the staged term is persisted, resolving again matches it.
	if err := tx.WithContext(ctx).Create(resolved[1].Term).Error; err != nil {
		t.Fatalf("persist staged term: %v", err)
	}
	again, err := resolver.ResolveTags(ctx, tx, []string{"Blue"}, VocabularyByID(colors.ID), "")
	if err != nil {
		t.Fatalf("ResolveTags again: %v", err)
	}
	if len(again) != 1 || again[0].Term.ID != resolved[1].Term.ID {
		t.Fatalf("persisted term not matched: %+v", again)
	}
}

func TestResolveTagsVocabularyRefs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	resolver := newTagResolver(t, db)

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	moods := testutil.SeedVocabulary(t, ctx, tx, "Moods")
	red := testutil.SeedTerm(t, ctx, tx, colors.ID, "Red", nil)
	testutil.SeedTerm(t, ctx, tx, moods.ID, "Red", nil)

	resolved, err := resolver.ResolveTags(ctx, tx, []string{"Red"}, VocabularyBySlug("colors"), "")
	if err != nil {
		t.Fatalf("ResolveTags by slug: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Term.ID != red.ID {
		t.Fatalf("slug scope not applied: %+v", resolved)
	}

	resolved, err = resolver.ResolveTags(ctx, tx, []string{"Red"}, VocabularyValue(colors), "")
	if err != nil {
		t.Fatalf("ResolveTags by value: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Term.ID != red.ID {
		t.Fatalf("value scope not applied: %+v", resolved)
	}

	// An unresolvable slug scope matches nothing; every tag is staged
	// with the vocabulary left unset.
	resolved, err = resolver.ResolveTags(ctx, tx, []string{"Red"}, VocabularyBySlug("nope"), "")
	if err != nil {
		t.Fatalf("ResolveTags unknown slug: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved tag, got %+v", resolved)
	}
	if staged := resolved[0].Term; staged.ID != 0 || staged.VocabularyID != 0 {
		t.Fatalf("expected staged term without vocabulary, got %+v", staged)
	}
}

func TestResolveTagsLocalized(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	resolver := newTagResolver(t, db)

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	red := testutil.SeedTerm(t, ctx, tx, colors.ID, "Red", nil)
	crimson := testutil.SeedTerm(t, ctx, tx, colors.ID, "Crimson", nil)
	testutil.SeedTermLocale(t, ctx, tx, red.ID, "nl", "Rood", "")

	// The locale's override name matches, and the resolved term carries
	// the localized view.
	resolved, err := resolver.ResolveTags(ctx, tx, []string{"Rood"}, VocabularyByID(colors.ID), "nl")
	if err != nil {
		t.Fatalf("ResolveTags localized: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Term.ID != red.ID {
		t.Fatalf("override name not matched: %+v", resolved)
	}
	if resolved[0].Term.Name != "Rood" || resolved[0].Term.Locale != "nl" {
		t.Fatalf("localized view not applied: %+v", resolved[0].Term)
	}

	// Terms without an override still match on their base name.
	resolved, err = resolver.ResolveTags(ctx, tx, []string{"Crimson"}, VocabularyByID(colors.ID), "nl")
	if err != nil {
		t.Fatalf("ResolveTags fallback: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Term.ID != crimson.ID {
		t.Fatalf("base name not matched: %+v", resolved)
	}

	// The base name is shadowed by the override in this locale, so the
	// tag stages a new term.
	resolved, err = resolver.ResolveTags(ctx, tx, []string{"Red"}, VocabularyByID(colors.ID), "nl")
	if err != nil {
		t.Fatalf("ResolveTags shadowed: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Term.ID != 0 {
		t.Fatalf("expected a staged term, got %+v", resolved)
	}
}
