package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/foodrec/internal/models"
)

// HealthReport summarizes whether a collection is ready to serve queries.
type HealthReport struct {
	Collection     string            `json:"collection"`
	Backend        string            `json:"backend"`
	IsHealthy      bool              `json:"is_healthy"`
	ItemCount      int               `json:"item_count"`
	HasEmbeddings  bool              `json:"has_embeddings"`
	MetadataFields []string          `json:"metadata_fields"`
	SampleItem     map[string]string `json:"sample_item,omitempty"`
	Issues         []string          `json:"issues"`
}

// Health inspects the collection. Failures are reported as issues, never returned.
func (ix *Index) Health(ctx context.Context, coll *models.Collection) *HealthReport {
	report := &HealthReport{
		Backend:        ix.backend.Name(),
		IsHealthy:      true,
		MetadataFields: []string{},
		Issues:         []string{},
	}
	fail := func(issue string) {
		report.IsHealthy = false
		report.Issues = append(report.Issues, issue)
	}
	if coll == nil {
		fail("No collection")
		return report
	}
	report.Collection = coll.Name

	sample, hasVector, err := ix.backend.Sample(ctx, coll.Name)
	if err != nil {
		fail(fmt.Sprintf("Health check failed: %v", err))
		return report
	}
	if sample == nil {
		fail("Collection is empty")
		return report
	}

	count, err := ix.backend.Count(ctx, coll.Name)
	if err != nil {
		fail(fmt.Sprintf("Health check failed: %v", err))
		return report
	}
	report.ItemCount = count
	report.HasEmbeddings = hasVector
	for k := range sample.Metadata {
		report.MetadataFields = append(report.MetadataFields, k)
	}
	sort.Strings(report.MetadataFields)
	if len(sample.Metadata) > 0 {
		report.SampleItem = sample.Metadata
	}

	if count == 0 {
		fail("Collection is empty")
	}
	if !hasVector {
		fail("No embeddings found")
	}
	if len(report.MetadataFields) == 0 {
		fail("No metadata found")
	}
	for _, key := range []string{models.MetaFoodName, models.MetaCuisineType, models.MetaCalories} {
		if _, ok := sample.Metadata[key]; !ok && len(sample.Metadata) > 0 {
			fail(fmt.Sprintf("Sample item is missing %q", key))
		}
	}
	return report
}
