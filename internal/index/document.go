package index

import (
	"strconv"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
)

// EntryID returns the id of the record at position.
func EntryID(position int) string {
	return "food_" + strconv.Itoa(position)
}

// BuildDocument returns the text that gets embedded for a record: name, cuisine
// and description, then ingredients, taste profile and cooking method when present.
func BuildDocument(r *models.FoodRecord) string {
	parts := []string{r.Name, r.Cuisine, r.Description}
	if s := r.Ingredients.String(); s != "" {
		parts = append(parts, s)
	}
	if r.TasteProfile != "" {
		parts = append(parts, r.TasteProfile)
	}
	if r.CookingMethod != "" {
		parts = append(parts, r.CookingMethod)
	}
	return strings.Join(parts, " ")
}

// BuildMetadata flattens a record into text-valued metadata.
func BuildMetadata(r *models.FoodRecord) map[string]string {
	return map[string]string{
		models.MetaFoodName:       r.Name,
		models.MetaCuisineType:    r.Cuisine,
		models.MetaDescription:    r.Description,
		models.MetaCalories:       strconv.Itoa(r.CaloriesPerServing),
		models.MetaIngredients:    r.Ingredients.String(),
		models.MetaHealthBenefits: r.HealthBenefits,
		models.MetaCookingMethod:  r.CookingMethod,
		models.MetaTasteProfile:   r.TasteProfile,
	}
}

// BuildEntries converts records to entries without embeddings, one per record, in order.
func BuildEntries(records []*models.FoodRecord) []*models.IndexedEntry {
	entries := make([]*models.IndexedEntry, len(records))
	for i, r := range records {
		entries[i] = &models.IndexedEntry{
			ID:       EntryID(i),
			Position: i,
			Document: BuildDocument(r),
			Metadata: BuildMetadata(r),
		}
	}
	return entries
}

