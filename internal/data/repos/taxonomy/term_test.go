package taxonomy

import (
	"context"
	"testing"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos/testutil"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
)

func TestTermRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTermRepo(db, testutil.Logger(t))

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	moods := testutil.SeedVocabulary(t, ctx, tx, "Moods")

	red, err := repo.Create(ctx, tx, &types.Term{VocabularyID: colors.ID, Name: "Red", Slug: "red"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if red.ID == 0 {
		t.Fatal("Create did not assign an id")
	}
	crimson, err := repo.Create(ctx, tx, &types.Term{VocabularyID: colors.ID, ParentID: &red.ID, Name: "Crimson", Slug: "crimson"})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}
	// Same name in a different vocabulary is a different term.
	moodyRed, err := repo.Create(ctx, tx, &types.Term{VocabularyID: moods.ID, Name: "Red", Slug: "red"})
	if err != nil {
		t.Fatalf("Create in second vocabulary: %v", err)
	}

	if got, err := repo.GetByID(ctx, tx, red.ID); err != nil || got == nil || got.Name != "Red" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	if got, err := repo.GetByName(ctx, tx, colors.ID, "Red"); err != nil || got == nil || got.ID != red.ID {
		t.Fatalf("GetByName scoped: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByName(ctx, tx, moods.ID, "Red"); err != nil || got == nil || got.ID != moodyRed.ID {
		t.Fatalf("GetByName other vocabulary: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByName(ctx, tx, colors.ID, "red"); err != nil || got != nil {
		t.Fatalf("GetByName must be case sensitive: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByName(ctx, tx, 0, "Crimson"); err != nil || got == nil || got.ID != crimson.ID {
		t.Fatalf("GetByName unscoped: got=%+v err=%v", got, err)
	}

	testutil.SeedTermLocale(t, ctx, tx, red.ID, "nl", "Rood", "")
	if got, err := repo.GetByNameLocalized(ctx, tx, colors.ID, "nl", "Rood"); err != nil || got == nil || got.ID != red.ID {
		t.Fatalf("GetByNameLocalized override: got=%+v err=%v", got, err)
	}
	// A term without an override for the locale still matches on its
	// base name.
	if got, err := repo.GetByNameLocalized(ctx, tx, colors.ID, "nl", "Crimson"); err != nil || got == nil || got.ID != crimson.ID {
		t.Fatalf("GetByNameLocalized fallback: got=%+v err=%v", got, err)
	}
	// The override shadows the base name for that locale.
	if got, err := repo.GetByNameLocalized(ctx, tx, colors.ID, "nl", "Red"); err != nil || got != nil {
		t.Fatalf("GetByNameLocalized shadowed base name: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByNameLocalized(ctx, tx, moods.ID, "nl", "Rood"); err != nil || got != nil {
		t.Fatalf("GetByNameLocalized other vocabulary: got=%+v err=%v", got, err)
	}

	if rows, err := repo.ListByVocabulary(ctx, tx, colors.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByVocabulary: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListChildren(ctx, tx, red.ID); err != nil || len(rows) != 1 || rows[0].ID != crimson.ID {
		t.Fatalf("ListChildren: err=%v rows=%v", err, rows)
	}

	if exists, err := repo.SlugExistsInVocabulary(ctx, tx, colors.ID, "red"); err != nil || !exists {
		t.Fatalf("SlugExistsInVocabulary: exists=%v err=%v", exists, err)
	}
	if exists, err := repo.SlugExistsInVocabulary(ctx, tx, colors.ID, "green"); err != nil || exists {
		t.Fatalf("SlugExistsInVocabulary miss: exists=%v err=%v", exists, err)
	}

	red.Name = "Ruby"
	red.Weight = 7
	red.Slug = "mutated"
	if err := repo.Update(ctx, tx, red); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, red.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after update: got=%+v err=%v", got, err)
	}
	if got.Name != "Ruby" || got.Weight != 7 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Slug != "red" {
		t.Fatalf("slug must never be rewritten, got %q", got.Slug)
	}

	if err := repo.ReparentChildren(ctx, tx, red.ID, nil); err != nil {
		t.Fatalf("ReparentChildren: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, crimson.ID); err != nil || got.ParentID != nil {
		t.Fatalf("child not reparented: got=%+v err=%v", got, err)
	}

	if err := repo.DeleteByID(ctx, tx, red.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, red.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%+v err=%v", got, err)
	}
}

func TestTermLocaleRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTermLocaleRepo(db, testutil.Logger(t))

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	red := testutil.SeedTerm(t, ctx, tx, colors.ID, "Red", nil)
	blue := testutil.SeedTerm(t, ctx, tx, colors.ID, "Blue", nil)

	if err := repo.Upsert(ctx, tx, &types.TermLocale{TermID: red.ID, Locale: "nl", Name: "Rood"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, tx, &types.TermLocale{TermID: red.ID, Locale: "fr", Name: "Rouge"}); err != nil {
		t.Fatalf("Upsert second locale: %v", err)
	}
	// Upserting the same (term, locale) updates instead of duplicating.
	if err := repo.Upsert(ctx, tx, &types.TermLocale{TermID: red.ID, Locale: "nl", Name: "Dieprood", Description: "donker"}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	got, err := repo.Get(ctx, tx, red.ID, "nl")
	if err != nil || got == nil {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
	if got.Name != "Dieprood" || got.Description != "donker" {
		t.Fatalf("upsert did not update: %+v", got)
	}
	if got, err := repo.Get(ctx, tx, red.ID, "de"); err != nil || got != nil {
		t.Fatalf("Get miss: got=%+v err=%v", got, err)
	}

	byTerm, err := repo.GetForTerms(ctx, tx, []int64{red.ID, blue.ID}, "nl")
	if err != nil {
		t.Fatalf("GetForTerms: %v", err)
	}
	if len(byTerm) != 1 || byTerm[red.ID] == nil {
		t.Fatalf("GetForTerms: %+v", byTerm)
	}

	locales, err := repo.ListLocales(ctx, tx, red.ID)
	if err != nil {
		t.Fatalf("ListLocales: %v", err)
	}
	if len(locales) != 2 || locales[0] != "fr" || locales[1] != "nl" {
		t.Fatalf("ListLocales: %v", locales)
	}

	removed, err := repo.DeleteByTermAndLocale(ctx, tx, red.ID, "nl")
	if err != nil || !removed {
		t.Fatalf("DeleteByTermAndLocale: removed=%v err=%v", removed, err)
	}
	removed, err = repo.DeleteByTermAndLocale(ctx, tx, red.ID, "nl")
	if err != nil || removed {
		t.Fatalf("DeleteByTermAndLocale repeat: removed=%v err=%v", removed, err)
	}

	if err := repo.DeleteByTerm(ctx, tx, red.ID); err != nil {
		t.Fatalf("DeleteByTerm: %v", err)
	}
	if locales, err := repo.ListLocales(ctx, tx, red.ID); err != nil || len(locales) != 0 {
		t.Fatalf("locales remain after DeleteByTerm: %v err=%v", locales, err)
	}
}
