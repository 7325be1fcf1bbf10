package services

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos/testutil"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/errors"
)

func TestCloudWeight(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	colors := testutil.SeedVocabulary(t, ctx, db, "Colors")
	red := testutil.SeedTerm(t, ctx, db, colors.ID, "Red", nil)
	blue := testutil.SeedTerm(t, ctx, db, colors.ID, "Blue", nil)

	testutil.SeedConsumerTable(t, ctx, db, "article")
	testutil.SeedConsumerTable(t, ctx, db, "event")
	testutil.SeedConsumerRef(t, ctx, db, "article", red.ID, 2)
	testutil.SeedConsumerRef(t, ctx, db, "event", red.ID, 1)

	svc, err := NewCloudService(db, testutil.Logger(t),
		ConsumerModel{Name: "article", Table: "article"},
		ConsumerModel{Name: "event", Table: "event", Weight: 3})
	if err != nil {
		t.Fatalf("NewCloudService: %v", err)
	}

	// 2 article rows at weight 1 plus 1 event row at weight 3.
	weight, err := svc.CloudWeight(ctx, nil, red)
	if err != nil {
		t.Fatalf("CloudWeight: %v", err)
	}
	if weight != 5 {
		t.Fatalf("expected weight 5, got %d", weight)
	}

	weight, err = svc.CloudWeight(ctx, nil, blue)
	if err != nil {
		t.Fatalf("CloudWeight unreferenced: %v", err)
	}
	if weight != 0 {
		t.Fatalf("expected weight 0, got %d", weight)
	}

	if _, err := svc.CloudWeight(ctx, nil, &types.Term{}); !goerrors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("unpersisted term: expected ErrInvalidArgument, got %v", err)
	}
}

func TestCloudWeightInTransaction(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	colors := testutil.SeedVocabulary(t, ctx, tx, "Colors")
	red := testutil.SeedTerm(t, ctx, tx, colors.ID, "Red", nil)
	testutil.SeedConsumerTable(t, ctx, tx, "article")
	testutil.SeedConsumerRef(t, ctx, tx, "article", red.ID, 4)

	svc, err := NewCloudService(db, testutil.Logger(t),
		ConsumerModel{Name: "article", Table: "article", Weight: 2})
	if err != nil {
		t.Fatalf("NewCloudService: %v", err)
	}

	// Counts on a caller transaction see its uncommitted rows.
	weight, err := svc.CloudWeight(ctx, tx, red)
	if err != nil {
		t.Fatalf("CloudWeight: %v", err)
	}
	if weight != 8 {
		t.Fatalf("expected weight 8, got %d", weight)
	}
}

func TestCalculateCloud(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	colors := testutil.SeedVocabulary(t, ctx, db, "Colors")
	red := testutil.SeedTerm(t, ctx, db, colors.ID, "Red", nil)
	blue := testutil.SeedTerm(t, ctx, db, colors.ID, "Blue", nil)

	testutil.SeedConsumerTable(t, ctx, db, "article")
	testutil.SeedConsumerRef(t, ctx, db, "article", red.ID, 3)
	testutil.SeedConsumerRef(t, ctx, db, "article", blue.ID, 1)

	svc, err := NewCloudService(db, testutil.Logger(t),
		ConsumerModel{Name: "article", Table: "article"})
	if err != nil {
		t.Fatalf("NewCloudService: %v", err)
	}

	terms := []*types.Term{red, blue}
	out, err := svc.CalculateCloud(ctx, nil, terms)
	if err != nil {
		t.Fatalf("CalculateCloud: %v", err)
	}
	// Weights are recomputed in place on the same slice.
	if len(out) != 2 || out[0] != red || out[1] != blue {
		t.Fatalf("expected the input slice back, got %+v", out)
	}
	if red.Weight != 3 || blue.Weight != 1 {
		t.Fatalf("weights not applied: red=%d blue=%d", red.Weight, blue.Weight)
	}

	if _, err := svc.CalculateCloud(ctx, nil, []*types.Term{red, {}}); !goerrors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("unpersisted term: expected ErrInvalidArgument, got %v", err)
	}
}

func TestCloudServiceRegister(t *testing.T) {
	db := testutil.DB(t)

	if _, err := NewCloudService(db, testutil.Logger(t),
		ConsumerModel{Name: "evil", Table: "article; drop table article"}); err == nil {
		t.Fatal("expected an error for a non-identifier table name")
	}

	svc, err := NewCloudService(db, testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewCloudService: %v", err)
	}
	if err := svc.Register(ConsumerModel{Table: "article", TermColumn: "term id"}); !goerrors.Is(err, errors.ErrValidation) {
		t.Fatalf("bad column: expected ErrValidation, got %v", err)
	}
}
