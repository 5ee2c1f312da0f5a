package app

import (
	"context"
	"strings"
	"time"

	"fluentpro/internal/ai/gemini"
	"fluentpro/internal/config"
	"fluentpro/internal/database"
	dbpostgres "fluentpro/internal/database/postgres"
	"fluentpro/internal/indexing"
	"fluentpro/internal/infrastructure/cache"
	"fluentpro/internal/pkg/jwt"
	"fluentpro/internal/pkg/logger"
	"fluentpro/internal/repository"
	"fluentpro/internal/usecase"
	"fluentpro/internal/vector"
	"fluentpro/internal/ws"
)

// Container wires configuration, storage, external clients and usecases
// for both the server and the ingest command.
type Container struct {
	Config config.Config
	Log    *logger.Logger
	DB     database.DB
	Cache  *cache.Redis
	JWT    jwt.Service

	Profiles   repository.ProfileRepository
	Industries repository.IndustryRepository
	Partners   repository.PartnerRepository
	Roles      repository.RoleRepository

	Embedder  *gemini.Embedder
	RoleIndex *vector.RoleIndex
	Indexer   *indexing.Queue

	Hub      *ws.Hub
	Notifier *ws.ProgressNotifier

	Onboarding   usecase.OnboardingUsecase
	RoleMatching usecase.RoleMatchingUsecase
	Catalog      usecase.CatalogUsecase
}

func NewContainer(cfg config.Config) (*Container, error) {
	log, err := logger.New(cfg.App.Environment)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  cache.NewRedis(log),
		JWT:    jwt.NewHMACService(cfg.Auth.TokenSecret, cfg.Auth.AccessExpiresIn, cfg.Auth.ResumeExpiresIn),
	}

	c.Profiles = repository.NewPostgresProfileRepository(db)
	c.Industries = repository.NewPostgresIndustryRepository(db)
	c.Partners = repository.NewPostgresPartnerRepository(db)
	c.Roles = repository.NewPostgresRoleRepository(db)

	if err := c.buildMatchingStack(ctx); err != nil {
		// Matching degrades to errors at request time; onboarding by
		// known role id still works.
		log.Warn("matching stack disabled", "error", err)
	}

	c.Hub = ws.NewHub(log)
	c.Notifier = ws.NewProgressNotifier(c.Hub)

	var jsonCache usecase.Cache
	if c.Cache != nil {
		jsonCache = c.Cache
	}
	roleMatching := usecase.NewRoleMatchingUsecase(
		c.Roles, c.Industries, embedderOrNil(c.Embedder), indexOrNil(c.RoleIndex), indexerOrNil(c.Indexer), jsonCache, log,
	)
	c.RoleMatching = roleMatching

	c.Onboarding = usecase.NewOnboardingUsecase(
		c.Profiles, c.Industries, c.Partners, c.Roles, roleMatching, c.JWT, c.Notifier,
	)
	c.Catalog = usecase.NewCatalogUsecase(c.Industries, c.Partners, jsonCache)

	return c, nil
}

func (c *Container) buildMatchingStack(ctx context.Context) error {
	if strings.TrimSpace(c.Config.Gemini.APIKey) == "" {
		return errNotConfigured("GEMINI_API_KEY")
	}
	if strings.TrimSpace(c.Config.Vector.APIKey) == "" {
		return errNotConfigured("VECTOR_API_KEY")
	}

	embedder, err := gemini.NewEmbedder(ctx, c.Config.Gemini.APIKey, c.Config.Gemini.EmbedModel)
	if err != nil {
		return err
	}

	vc, err := vector.New(c.Log, vector.Config{
		APIKey:     c.Config.Vector.APIKey,
		APIVersion: c.Config.Vector.APIVersion,
		BaseURL:    c.Config.Vector.BaseURL,
	})
	if err != nil {
		return err
	}

	index, err := vector.NewRoleIndex(vc, vector.RoleIndexOptions{
		IndexName: c.Config.Vector.IndexName,
		Host:      c.Config.Vector.IndexHost,
		Namespace: c.Config.Vector.Namespace,
	})
	if err != nil {
		return err
	}

	c.Embedder = embedder
	c.RoleIndex = index
	c.Indexer = indexing.NewQueue(embedder, index, c.Roles, c.Config.Ingest.Workers, 0, c.Log)
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Indexer != nil {
		c.Indexer.Close()
	}
	if c.Log != nil {
		c.Log.Sync()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

type errNotConfigured string

func (e errNotConfigured) Error() string {
	return string(e) + " is not set"
}

func embedderOrNil(e *gemini.Embedder) usecase.Embedder {
	if e == nil {
		return nil
	}
	return e
}

func indexOrNil(ri *vector.RoleIndex) usecase.RoleIndex {
	if ri == nil {
		return nil
	}
	return ri
}

func indexerOrNil(q *indexing.Queue) usecase.RoleIndexer {
	if q == nil {
		return nil
	}
	return q
}
