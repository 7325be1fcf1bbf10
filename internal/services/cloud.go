package services

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/errors"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
)

const (
	// DefaultTermColumn is the column consumer tables are assumed to
	// reference terms through unless configured otherwise.
	DefaultTermColumn = "taxonomy_term_id"

	cloudCountConcurrency = 4
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ConsumerModel describes one external record type that may reference a
// taxonomy term. The set of consumers is open and configuration driven;
// this core only issues count queries against them.
type ConsumerModel struct {
	Name       string `yaml:"name"`
	Table      string `yaml:"table"`
	TermColumn string `yaml:"term_column"`
	// Weight multiplies this consumer's reference count in the cloud
	// weight sum. Zero means the default of 1.
	Weight int `yaml:"weight"`
}

func (m ConsumerModel) withDefaults() ConsumerModel {
	if m.TermColumn == "" {
		m.TermColumn = DefaultTermColumn
	}
	if m.Weight == 0 {
		m.Weight = 1
	}
	if m.Name == "" {
		m.Name = m.Table
	}
	return m
}

// Validate rejects consumers whose table or column is not a plain SQL
// identifier, since both end up interpolated into count queries.
func (m ConsumerModel) Validate() error {
	if !identifierPattern.MatchString(m.Table) {
		return errors.Validationf("consumer table %q is not a valid identifier", m.Table)
	}
	column := m.TermColumn
	if column == "" {
		column = DefaultTermColumn
	}
	if !identifierPattern.MatchString(column) {
		return errors.Validationf("consumer term column %q is not a valid identifier", column)
	}
	return nil
}

// CloudService computes term popularity across every registered consumer
// model.
type CloudService interface {
	Register(consumer ConsumerModel) error

	// CloudWeight sums, over all consumers, the number of rows
	// referencing the term multiplied by the consumer's weight.
	CloudWeight(ctx context.Context, tx *gorm.DB, term *types.Term) (int64, error)

	// CalculateCloud applies CloudWeight to every term, mutating each
	// term's weight in place as a derived display value, and returns the
	// same slice for chaining. It fails eagerly on the first invalid
	// term. Weights are not persisted unless the caller saves.
	CalculateCloud(ctx context.Context, tx *gorm.DB, terms []*types.Term) ([]*types.Term, error)
}

type cloudService struct {
	db        *gorm.DB
	consumers []ConsumerModel
	log       *logger.Logger
}

func NewCloudService(db *gorm.DB, baseLog *logger.Logger, consumers ...ConsumerModel) (CloudService, error) {
	s := &cloudService{
		db:  db,
		log: baseLog.With("service", "CloudService"),
	}
	for _, consumer := range consumers {
		if err := s.Register(consumer); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *cloudService) Register(consumer ConsumerModel) error {
	if err := consumer.Validate(); err != nil {
		return err
	}
	s.consumers = append(s.consumers, consumer.withDefaults())
	return nil
}

func (s *cloudService) CloudWeight(ctx context.Context, tx *gorm.DB, term *types.Term) (int64, error) {
	if term == nil || term.ID == 0 {
		return 0, errors.InvalidArgumentf("cloud weight requires a persisted term")
	}

	// A caller-supplied transaction handle is not safe to share between
	// goroutines, so counts run sequentially on it. On the base pool
	// they fan out.
	if tx != nil {
		var weight int64
		for _, consumer := range s.consumers {
			count, err := s.countReferences(ctx, tx, consumer, term.ID)
			if err != nil {
				return 0, MapError(err)
			}
			weight += count * int64(consumer.Weight)
		}
		return weight, nil
	}

	var weight atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cloudCountConcurrency)
	for _, consumer := range s.consumers {
		group.Go(func() error {
			count, err := s.countReferences(groupCtx, s.db, consumer, term.ID)
			if err != nil {
				return err
			}
			weight.Add(count * int64(consumer.Weight))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, MapError(err)
	}
	return weight.Load(), nil
}

func (s *cloudService) countReferences(ctx context.Context, handle *gorm.DB, consumer ConsumerModel, termID int64) (int64, error) {
	var count int64
	err := handle.WithContext(ctx).
		Table(consumer.Table).
		Where(fmt.Sprintf("%s = ?", consumer.TermColumn), termID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count references in %s: %w", consumer.Table, err)
	}
	return count, nil
}

func (s *cloudService) CalculateCloud(ctx context.Context, tx *gorm.DB, terms []*types.Term) ([]*types.Term, error) {
	for _, term := range terms {
		weight, err := s.CloudWeight(ctx, tx, term)
		if err != nil {
			return nil, err
		}
		term.Weight = int(weight)
	}
	return terms, nil
}
