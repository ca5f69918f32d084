// Package catalog loads and validates food catalogs and watches them for changes.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the catalog path does not name an existing file.
	ErrNotFound = errors.New("catalog not found")
	// ErrFormat is returned when the catalog is not valid JSON or not a JSON array.
	ErrFormat = errors.New("invalid catalog format")
	// ErrEmptyCatalog is returned when no record survives validation.
	ErrEmptyCatalog = errors.New("catalog has no valid records")
)

// JSON field names used by catalog files.
const (
	fieldName           = "food_name"
	fieldCuisine        = "cuisine_type"
	fieldDescription    = "food_description"
	fieldCalories       = "food_calories_per_serving"
	fieldIngredients    = "food_ingredients"
	fieldHealthBenefits = "food_health_benefits"
	fieldCookingMethod  = "cooking_method"
	fieldTasteProfile   = "taste_profile"
)

// LoadOption configures Load.
type LoadOption func(*loader)

type loader struct {
	logger *zap.Logger
}

// WithLogger sets a logger that receives kept/skipped counts.
func WithLogger(l *zap.Logger) LoadOption {
	return func(ld *loader) { ld.logger = l }
}

// Load reads the JSON array at path and returns its valid records in file order.
// Elements that are not objects, or that lack a non-empty name, cuisine, or
// description, are skipped.
func Load(path string, opts ...LoadOption) ([]*models.FoodRecord, error) {
	ld := &loader{}
	for _, opt := range opts {
		opt(ld)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ld.parse(data, path)
}

// Parse validates catalog JSON that is already in memory.
func Parse(data []byte, opts ...LoadOption) ([]*models.FoodRecord, error) {
	ld := &loader{}
	for _, opt := range opts {
		opt(ld)
	}
	return ld.parse(data, "<memory>")
}

func (ld *loader) parse(data []byte, source string) ([]*models.FoodRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, source, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: %s: trailing data after JSON value", ErrFormat, source)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: top-level value must be an array", ErrFormat, source)
	}

	records := make([]*models.FoodRecord, 0, len(items))
	skipped := 0
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			ld.debug("skipping non-object catalog item", zap.Int("position", i))
			continue
		}
		rec, ok := recordFrom(obj)
		if !ok {
			skipped++
			ld.debug("skipping catalog item missing required fields", zap.Int("position", i))
			continue
		}
		records = append(records, rec)
	}

	if ld.logger != nil {
		ld.logger.Info("catalog loaded",
			zap.String("source", source),
			zap.Int("records", len(records)),
			zap.Int("skipped", skipped))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s (%d items skipped)", ErrEmptyCatalog, source, skipped)
	}
	return records, nil
}

func (ld *loader) debug(msg string, fields ...zap.Field) {
	if ld.logger != nil {
		ld.logger.Debug(msg, fields...)
	}
}

func recordFrom(obj map[string]interface{}) (*models.FoodRecord, bool) {
	name := textField(obj, fieldName)
	cuisine := textField(obj, fieldCuisine)
	description := textField(obj, fieldDescription)
	if name == "" || cuisine == "" || description == "" {
		return nil, false
	}
	return &models.FoodRecord{
		Name:               name,
		Cuisine:            cuisine,
		Description:        description,
		CaloriesPerServing: calories(obj[fieldCalories]),
		Ingredients:        ingredients(obj[fieldIngredients]),
		HealthBenefits:     textField(obj, fieldHealthBenefits),
		CookingMethod:      textField(obj, fieldCookingMethod),
		TasteProfile:       textField(obj, fieldTasteProfile),
	}, true
}

// textField returns the trimmed text at key. Numbers and booleans are formatted
// as text; absent, null, object and array values give "".
func textField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return normalizeText(v)
	case json.Number, bool:
		return normalizeText(fmt.Sprint(v))
	default:
		return ""
	}
}

// calories coerces a decoded JSON value to a non-negative int, 0 on failure.
func calories(v interface{}) int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clampCalories(float64(i))
		}
		if f, err := n.Float64(); err == nil {
			return clampCalories(math.Trunc(f))
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return clampCalories(float64(i))
		}
	}
	return 0
}

func clampCalories(f float64) int {
	if f < 0 || math.IsNaN(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func ingredients(v interface{}) models.Ingredients {
	in := models.IngredientsFrom(v)
	for i, item := range in.List {
		in.List[i] = normalizeText(item)
	}
	in.Text = normalizeText(in.Text)
	return in
}

// normalizeText trims surrounding whitespace. Inner spacing is kept as written.
func normalizeText(text string) string {
	return strings.TrimSpace(text)
}
