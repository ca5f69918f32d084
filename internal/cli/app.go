package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/foodrec/internal/catalog"
	"github.com/hyperjump/foodrec/internal/config"
	"github.com/hyperjump/foodrec/internal/embedding"
	"github.com/hyperjump/foodrec/internal/index"
	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/internal/recommend"
	"github.com/hyperjump/foodrec/internal/search"
	"go.uber.org/zap"
)

// ErrNoCollection is returned by searches when no collection has been built.
var ErrNoCollection = errors.New("no food collection is loaded")

// SearchCollection is the collection one-shot searches build.
const SearchCollection = "food_search"

// App holds the initialized services and the collection a session searches.
type App struct {
	cfg         *config.Config
	logger      *zap.Logger
	provider    *embedding.Provider
	index       *index.Index
	engine      *search.Engine
	recommender *recommend.Recommender
	generator   recommend.Generator
	watcher     *catalog.Watcher

	name        string
	description string
	collection  *models.Collection
	records     []*models.FoodRecord
	cuisines    []string
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	logger    *zap.Logger
	generator recommend.Generator
	provider  *embedding.Provider
}

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) AppOption {
	return func(o *appOptions) { o.logger = l }
}

// WithGenerator overrides the configured text generator.
func WithGenerator(g recommend.Generator) AppOption {
	return func(o *appOptions) { o.generator = g }
}

// WithProvider overrides the configured embedding provider.
func WithProvider(p *embedding.Provider) AppOption {
	return func(o *appOptions) { o.provider = p }
}

// NewApp builds the embedding provider, index backend, search engine and
// recommender described by cfg. Nothing is loaded until Build.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	logger := o.logger

	provider := o.provider
	if provider == nil {
		provider = embedding.NewFromConfig(cfg.Embedding, logger)
	}
	backend, err := index.NewBackend(cfg.Index, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}
	ix := index.New(backend, provider, index.WithLogger(logger))

	gen := o.generator
	if gen == nil {
		gen, err = recommend.NewGenerator(ctx, cfg.Generation, logger)
		if err != nil {
			_ = ix.Close()
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		index:    ix,
		engine:   search.NewEngine(ix, provider, &cfg.Search, search.WithLogger(logger)),
		recommender: recommend.NewRecommender(gen,
			recommend.WithLogger(logger),
			recommend.WithParams(recommend.ParamsFromConfig(cfg.Generation))),
		generator: gen,
	}
	if cfg.Catalog.Watch {
		app.watcher = catalog.NewWatcher(cfg.Catalog.Path, catalog.WithWatchLogger(logger))
		if err := app.watcher.Start(ctx); err != nil {
			logger.Warn("catalog watch disabled", zap.String("path", cfg.Catalog.Path), zap.Error(err))
			app.watcher = nil
		}
	}
	return app, nil
}

// Build loads the catalog and (re)creates the named collection from it.
//
// Recreating drops the old entries before the new ones are written. If writing
// the new catalog fails, the previously loaded records are written back so the
// collection keeps serving them; if that fails too, the app is left without a
// collection and searches report an error.
func (a *App) Build(ctx context.Context, name, description string) error {
	start := time.Now()
	a.name, a.description = name, description
	records, err := catalog.Load(a.cfg.Catalog.Path, catalog.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.logger.Info("catalog loaded", zap.String("path", a.cfg.Catalog.Path), zap.Int("records", len(records)))

	coll, err := a.index.CreateCollection(ctx, name, map[string]string{"description": description})
	if err != nil {
		a.drop()
		return err
	}
	if err := a.index.Populate(ctx, coll, records); err != nil {
		a.restore(ctx, coll, err)
		return err
	}
	a.collection = coll
	a.records = records
	a.cuisines = search.KnownCuisines(records)
	a.logger.Info("collection ready",
		zap.String("collection", name),
		zap.Int("records", len(records)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// restore writes the previous records into coll after a failed populate.
func (a *App) restore(ctx context.Context, coll *models.Collection, cause error) {
	if a.collection == nil || a.collection.Name != coll.Name || len(a.records) == 0 {
		a.drop()
		return
	}
	if err := a.index.Populate(ctx, coll, a.records); err != nil {
		a.logger.Warn("could not restore previous catalog",
			zap.String("collection", coll.Name), zap.NamedError("cause", cause), zap.Error(err))
		a.drop()
		return
	}
	a.collection = coll
	a.logger.Warn("catalog rebuild failed, previous records restored",
		zap.String("collection", coll.Name), zap.Int("records", len(a.records)), zap.Error(cause))
}

func (a *App) drop() {
	a.collection = nil
	a.records = nil
	a.cuisines = nil
}

// Refresh rebuilds the collection if the catalog file changed since the last
// check. It reports whether a rebuild happened.
func (a *App) Refresh(ctx context.Context, out io.Writer) bool {
	if a.watcher == nil || a.name == "" {
		return false
	}
	select {
	case <-a.watcher.Changes():
	default:
		return false
	}
	if err := a.Build(ctx, a.name, a.description); err != nil {
		if a.collection != nil {
			fmt.Fprintf(out, "Catalog changed but could not be reloaded, still using the previous %d food items: %v\n", len(a.records), err)
		} else {
			fmt.Fprintf(out, "Catalog changed but could not be reloaded, no food items are available: %v\n", err)
		}
		return false
	}
	fmt.Fprintf(out, "Catalog changed, reloaded %d food items\n", len(a.records))
	return true
}

// Records returns the loaded catalog.
func (a *App) Records() []*models.FoodRecord {
	return a.records
}

// Collection returns the collection built by Build.
func (a *App) Collection() *models.Collection {
	return a.collection
}

// Search runs q against the current collection and fills in cuisine suggestions
// when a cuisine filter matched nothing.
func (a *App) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	if a.collection == nil {
		return nil, ErrNoCollection
	}
	resp, err := a.engine.Run(ctx, a.collection, q)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 && q.Cuisine != "" && !a.knownCuisine(q.Cuisine) {
		resp.Suggestions = search.SuggestCuisines(a.cuisines, q.Cuisine, 3)
	}
	return resp, nil
}

func (a *App) knownCuisine(c string) bool {
	for _, known := range a.cuisines {
		if search.MatchesCuisine(known, c) {
			return true
		}
	}
	return false
}

// Health reports on the current collection.
func (a *App) Health(ctx context.Context) *index.HealthReport {
	return a.index.Health(ctx, a.collection)
}

// BackendName names the configured index backend.
func (a *App) BackendName() string {
	return a.index.Backend().Name()
}

// Close stops the watcher and releases the index, generator and embedding model.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.index != nil {
		_ = a.index.Close()
	}
	if a.generator != nil {
		_ = a.generator.Close()
	}
	if a.provider != nil {
		_ = a.provider.Close()
	}
}
