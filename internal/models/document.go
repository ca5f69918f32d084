package models

import "time"

// Metadata keys stored alongside each indexed entry. Every value is text.
const (
	MetaFoodName       = "food_name"
	MetaCuisineType    = "cuisine_type"
	MetaDescription    = "description"
	MetaCalories       = "calories"
	MetaIngredients    = "ingredients"
	MetaHealthBenefits = "health_benefits"
	MetaCookingMethod  = "cooking_method"
	MetaTasteProfile   = "taste_profile"
)

// MetadataKeys lists the metadata keys every entry carries, in display order.
var MetadataKeys = []string{
	MetaFoodName,
	MetaCuisineType,
	MetaDescription,
	MetaCalories,
	MetaIngredients,
	MetaHealthBenefits,
	MetaCookingMethod,
	MetaTasteProfile,
}

// IndexedEntry is one food record as stored in a similarity collection.
type IndexedEntry struct {
	ID        string            `json:"id" db:"id"`
	Document  string            `json:"document" db:"document"`
	Metadata  map[string]string `json:"metadata" db:"metadata"`
	Embedding []float32         `json:"-" db:"-"`
	Position  int               `json:"position" db:"position"`
}

// Collection is a named container of indexed entries.
type Collection struct {
	Name       string            `json:"name" db:"name"`
	Metadata   map[string]string `json:"metadata,omitempty" db:"metadata"`
	Dimensions int               `json:"dimensions" db:"dimensions"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// Hit is one raw nearest-neighbor result returned by a collection query.
type Hit struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
	Distance float64           `json:"distance"`
}
