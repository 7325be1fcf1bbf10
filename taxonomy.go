// Package taxonomy provides vocabularies of hierarchical, localizable
// terms, a resolver mapping free-text tag strings onto them, and a
// usage-based weight aggregator for tag clouds.
package taxonomy

import (
	"gorm.io/gorm"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/config"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/db"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/data/repos"
	types "github.com/all-ride/ride-web-orm-taxonomy/internal/domain"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/pkg/logger"
	"github.com/all-ride/ride-web-orm-taxonomy/internal/services"
)

// Aliases re-export the core types so importers never reach into
// internal packages.
type (
	Vocabulary = types.Vocabulary
	Term       = types.Term
	TermLocale = types.TermLocale

	VocabularyService = services.VocabularyService
	TermService       = services.TermService
	TagResolver       = services.TagResolver
	CloudService      = services.CloudService

	ConsumerModel = services.ConsumerModel
	VocabularyRef = services.VocabularyRef
	ResolvedTag   = services.ResolvedTag
	TreeOptions   = services.TreeOptions
	TreeEntry     = services.TreeEntry
	TreeOrder     = services.TreeOrder

	Logger = logger.Logger
)

const (
	TreeOrderName   = services.TreeOrderName
	TreeOrderWeight = services.TreeOrderWeight
)

var (
	VocabularyByID   = services.VocabularyByID
	VocabularyBySlug = services.VocabularyBySlug
	VocabularyValue  = services.VocabularyValue

	NewLogger = logger.New
)

// Options configures New. The zero value wires the services with no
// registered consumer models.
type Options struct {
	// ConsumerConfigPath points at a YAML consumer registry loaded on
	// top of Consumers. Empty skips the file.
	ConsumerConfigPath string
	Consumers          []ConsumerModel
}

// Module bundles the taxonomy services over one database handle. The
// caller owns the handle and its lifecycle; every service method accepts
// an optional transaction for composing with surrounding work.
type Module struct {
	Vocabularies VocabularyService
	Terms        TermService
	Resolver     TagResolver
	Cloud        CloudService
}

func New(gdb *gorm.DB, log *Logger, opts Options) (*Module, error) {
	consumers := opts.Consumers
	if opts.ConsumerConfigPath != "" {
		cfg, err := config.Load(opts.ConsumerConfigPath)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, cfg.Consumers...)
	}

	vocabularies := repos.NewVocabularyRepo(gdb, log)
	terms := repos.NewTermRepo(gdb, log)
	locales := repos.NewTermLocaleRepo(gdb, log)

	cloud, err := services.NewCloudService(gdb, log, consumers...)
	if err != nil {
		return nil, err
	}

	return &Module{
		Vocabularies: services.NewVocabularyService(vocabularies, log),
		Terms:        services.NewTermService(gdb, terms, locales, log),
		Resolver:     services.NewTagResolver(vocabularies, terms, locales, log),
		Cloud:        cloud,
	}, nil
}

// Migrate creates or updates the taxonomy tables on the given handle.
func Migrate(gdb *gorm.DB) error {
	return db.AutoMigrateAll(gdb)
}
