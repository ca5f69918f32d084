package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/foodrec/internal/config"
	"github.com/hyperjump/foodrec/internal/embedding"
	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/internal/recommend"
)

const testCatalog = `[
  {"food_name": "Alfredo Pasta", "cuisine_type": "Italian", "food_description": "creamy rich pasta with parmesan", "food_calories_per_serving": 650},
  {"food_name": "Margherita Pizza", "cuisine_type": "Italian", "food_description": "thin crust pizza with tomato and basil", "food_calories_per_serving": 280},
  {"food_name": "Miso Soup", "cuisine_type": "Japanese", "food_description": "light fresh soup with tofu and seaweed", "food_calories_per_serving": 90},
  {"food_name": "Green Curry", "cuisine_type": "Thai", "food_description": "spicy coconut curry with vegetables", "food_calories_per_serving": 420}
]`

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ recommend.GenerationParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Close() error { return nil }

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foods.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.Path = writeCatalog(t, testCatalog)
	cfg.Embedding.Dimensions = 256
	return cfg
}

func newTestApp(t *testing.T, collection string, opts ...AppOption) *App {
	t.Helper()
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t), opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(app.Close)
	if err := app.Build(ctx, collection, "test"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}

func TestApp_Build(t *testing.T) {
	app := newTestApp(t, SearchCollection)
	if len(app.Records()) != 4 {
		t.Fatalf("records = %d, want 4", len(app.Records()))
	}
	if app.Collection() == nil || app.Collection().Name != SearchCollection {
		t.Fatalf("collection = %+v", app.Collection())
	}
	if app.BackendName() != "memory" {
		t.Errorf("backend = %q", app.BackendName())
	}
	report := app.Health(context.Background())
	if report.ItemCount != 4 {
		t.Errorf("health count = %d, want 4", report.ItemCount)
	}
}

func TestApp_Build_missingCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if err := app.Build(context.Background(), SearchCollection, "test"); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestApp_NewApp_unknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Backend = "faiss"
	if _, err := NewApp(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestApp_Search_filters(t *testing.T) {
	app := newTestApp(t, SearchCollection)
	resp, err := app.Search(context.Background(), &models.SearchQuery{Query: "pasta", Cuisine: "italian", MaxCalories: models.IntPtr(300), Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Name != "Margherita Pizza" {
		t.Fatalf("results = %v", resultNames(resp.Results))
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("unexpected suggestions %v", resp.Suggestions)
	}
}

func TestApp_Search_suggestsCuisine(t *testing.T) {
	app := newTestApp(t, SearchCollection)
	resp, err := app.Search(context.Background(), &models.SearchQuery{Query: "pasta", Cuisine: "Itallian", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("results = %v, want none", resultNames(resp.Results))
	}
	if len(resp.Suggestions) == 0 || resp.Suggestions[0] != "Italian" {
		t.Errorf("suggestions = %v, want Italian first", resp.Suggestions)
	}
}

func TestApp_Refresh_rebuildsOnChange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Watch = true
	ctx := context.Background()
	app, err := NewApp(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if err := app.Build(ctx, SearchCollection, "test"); err != nil {
		t.Fatal(err)
	}
	if app.watcher == nil {
		t.Skip("file watching unavailable")
	}

	updated := strings.Replace(testCatalog, "\n]", `,
  {"food_name": "Tacos", "cuisine_type": "Mexican", "food_description": "corn tortillas with beef", "food_calories_per_serving": 350}
]`, 1)
	if err := os.WriteFile(cfg.Catalog.Path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	deadline := time.Now().Add(5 * time.Second)
	for !app.Refresh(ctx, &out) {
		if time.Now().After(deadline) {
			t.Fatal("catalog change was not picked up")
		}
		time.Sleep(50 * time.Millisecond)
	}
	if len(app.Records()) != 5 {
		t.Errorf("records = %d, want 5", len(app.Records()))
	}
	if !strings.Contains(out.String(), "reloaded 5 food items") {
		t.Errorf("output = %q", out.String())
	}
}

func TestApp_Refresh_noWatcher(t *testing.T) {
	app := newTestApp(t, SearchCollection)
	if app.Refresh(context.Background(), &bytes.Buffer{}) {
		t.Error("Refresh without a watcher should never rebuild")
	}
}

func TestApp_WithGenerator(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("offline")}
	app := newTestApp(t, ChatCollection, WithGenerator(gen))
	if !app.recommender.HasGenerator() {
		t.Error("injected generator not used")
	}
}

// rejectingEmbedder fails any batch containing a text that mentions reject.
type rejectingEmbedder struct {
	*embedding.HashEmbedder
	reject string
}

func (e *rejectingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if strings.Contains(text, e.reject) {
			return nil, errors.New("embedding backend unavailable")
		}
	}
	return e.HashEmbedder.EmbedBatch(ctx, texts)
}

func TestApp_Build_failedRebuildRestoresPreviousRecords(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	provider := embedding.NewStaticProvider(&rejectingEmbedder{HashEmbedder: embedding.NewHashEmbedder(256), reject: "Tacos"})
	app, err := NewApp(ctx, cfg, WithProvider(provider))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if err := app.Build(ctx, SearchCollection, "test"); err != nil {
		t.Fatal(err)
	}

	updated := strings.Replace(testCatalog, "\n]", `,
  {"food_name": "Tacos", "cuisine_type": "Mexican", "food_description": "corn tortillas with beef", "food_calories_per_serving": 350}
]`, 1)
	if err := os.WriteFile(cfg.Catalog.Path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}
	if err := app.Build(ctx, SearchCollection, "test"); err == nil {
		t.Fatal("expected rebuild to fail")
	}

	if app.Collection() == nil {
		t.Fatal("collection dropped after failed rebuild")
	}
	if len(app.Records()) != 4 {
		t.Errorf("records = %d, want previous 4", len(app.Records()))
	}
	if n := app.Health(ctx).ItemCount; n != 4 {
		t.Errorf("indexed items = %d, want 4", n)
	}
	resp, err := app.Search(ctx, &models.SearchQuery{Query: "soup", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 4 {
		t.Errorf("results = %v, want all 4 previous foods", resultNames(resp.Results))
	}
}

func TestApp_Build_failedFirstBuildLeavesNoCollection(t *testing.T) {
	ctx := context.Background()
	provider := embedding.NewStaticProvider(&rejectingEmbedder{HashEmbedder: embedding.NewHashEmbedder(256), reject: "Miso"})
	app, err := NewApp(ctx, testConfig(t), WithProvider(provider))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if err := app.Build(ctx, SearchCollection, "test"); err == nil {
		t.Fatal("expected build to fail")
	}
	if app.Collection() != nil || len(app.Records()) != 0 {
		t.Fatalf("collection = %+v, records = %d; want none", app.Collection(), len(app.Records()))
	}
	if _, err := app.Search(ctx, &models.SearchQuery{Query: "soup"}); !errors.Is(err, ErrNoCollection) {
		t.Errorf("Search error = %v, want ErrNoCollection", err)
	}
}

func resultNames(results []*models.SearchResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}
