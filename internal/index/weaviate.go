package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/hyperjump/foodrec/internal/models"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	wvmodels "github.com/weaviate/weaviate/entities/models"
)

// WeaviateBackend stores each collection as a Weaviate class with client-supplied vectors.
type WeaviateBackend struct {
	client *weaviate.Client
}

// NewWeaviateBackend creates a client for the Weaviate server at host (host:port).
func NewWeaviateBackend(host, scheme string) (*WeaviateBackend, error) {
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return &WeaviateBackend{client: client}, nil
}

// Name identifies the backend in logs and health reports.
func (b *WeaviateBackend) Name() string {
	return "weaviate"
}

// ClassName maps a collection name to a valid Weaviate class name.
func ClassName(collection string) string {
	name := strings.ReplaceAll(collection, "-", "_")
	if name == "" {
		return name
	}
	r := []rune(name)
	if unicode.IsDigit(r[0]) {
		return "C" + name
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// CreateCollection creates a class with no vectorizer and cosine distance.
func (b *WeaviateBackend) CreateCollection(ctx context.Context, coll *models.Collection) error {
	props := []*wvmodels.Property{
		{Name: payloadEntryID, DataType: []string{"text"}},
		{Name: payloadDocument, DataType: []string{"text"}},
		{Name: payloadPosition, DataType: []string{"int"}},
	}
	for _, key := range models.MetadataKeys {
		props = append(props, &wvmodels.Property{Name: key, DataType: []string{"text"}})
	}
	class := &wvmodels.Class{
		Class:             ClassName(coll.Name),
		Description:       coll.Metadata["description"],
		Vectorizer:        "none",
		VectorIndexConfig: map[string]interface{}{"distance": "cosine"},
		Properties:        props,
	}
	return b.client.Schema().ClassCreator().WithClass(class).Do(ctx)
}

// DeleteCollection drops the class if it exists.
func (b *WeaviateBackend) DeleteCollection(ctx context.Context, name string) (bool, error) {
	cls := ClassName(name)
	exists, err := b.client.Schema().ClassExistenceChecker().WithClassName(cls).Do(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := b.client.Schema().ClassDeleter().WithClassName(cls).Do(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Upsert writes all entries in one batch. Object ids are derived from entry ids,
// so writing the same entry twice replaces it.
func (b *WeaviateBackend) Upsert(ctx context.Context, collection string, entries []*models.IndexedEntry) error {
	cls := ClassName(collection)
	objects := make([]*wvmodels.Object, len(entries))
	for i, e := range entries {
		props := map[string]any{
			payloadEntryID:  e.ID,
			payloadDocument: e.Document,
			payloadPosition: e.Position,
		}
		for k, v := range e.Metadata {
			props[k] = v
		}
		objects[i] = &wvmodels.Object{
			Class:      cls,
			ID:         strfmt.UUID(PointID(collection, e.ID)),
			Properties: props,
			Vector:     e.Embedding,
		}
	}

	resp, err := b.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("object %s: %s", r.ID, r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func entryFields(extra ...string) []graphql.Field {
	fields := []graphql.Field{{Name: payloadEntryID}, {Name: payloadDocument}, {Name: payloadPosition}}
	for _, key := range models.MetadataKeys {
		fields = append(fields, graphql.Field{Name: key})
	}
	if len(extra) > 0 {
		additional := graphql.Field{Name: "_additional"}
		for _, name := range extra {
			additional.Fields = append(additional.Fields, graphql.Field{Name: name})
		}
		fields = append(fields, additional)
	}
	return fields
}

// Query runs a nearVector search and reads the cosine distance from _additional.
func (b *WeaviateBackend) Query(ctx context.Context, collection string, vec []float32, k int) ([]*models.Hit, error) {
	cls := ClassName(collection)
	gql := b.client.GraphQL()
	result, err := gql.Get().
		WithClassName(cls).
		WithNearVector(gql.NearVectorArgBuilder().WithVector(vec)).
		WithFields(entryFields("distance")...).
		WithLimit(k).
		Do(ctx)
	if err := graphQLError(result, err); err != nil {
		return nil, err
	}
	rows, err := getRows(result, cls)
	if err != nil {
		return nil, err
	}
	return hitsFromRows(rows)
}

// hitsFromRows converts nearVector rows to hits. A row without a numeric
// _additional.distance is an error; it cannot be ranked.
func hitsFromRows(rows []map[string]any) ([]*models.Hit, error) {
	hits := make([]*models.Hit, 0, len(rows))
	for _, row := range rows {
		entry := entryFromRow(row)
		add, _ := row["_additional"].(map[string]any)
		d, ok := add["distance"].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: weaviate object %q has no distance", ErrQuery, entry.ID)
		}
		hits = append(hits, &models.Hit{ID: entry.ID, Document: entry.Document, Metadata: entry.Metadata, Distance: d})
	}
	return hits, nil
}

// Count aggregates the class's object count.
func (b *WeaviateBackend) Count(ctx context.Context, collection string) (int, error) {
	cls := ClassName(collection)
	result, err := b.client.GraphQL().Aggregate().
		WithClassName(cls).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err := graphQLError(result, err); err != nil {
		return 0, err
	}
	agg, ok := result.Data["Aggregate"].(map[string]any)
	if !ok {
		return 0, errors.New("aggregate key not found in result")
	}
	rows, ok := agg[cls].([]any)
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, _ := rows[0].(map[string]any)
	meta, _ := row["meta"].(map[string]any)
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// Sample fetches one object together with its vector.
func (b *WeaviateBackend) Sample(ctx context.Context, collection string) (*models.IndexedEntry, bool, error) {
	cls := ClassName(collection)
	result, err := b.client.GraphQL().Get().
		WithClassName(cls).
		WithFields(entryFields("vector")...).
		WithLimit(1).
		Do(ctx)
	if err := graphQLError(result, err); err != nil {
		return nil, false, err
	}
	rows, err := getRows(result, cls)
	if err != nil || len(rows) == 0 {
		return nil, false, err
	}
	hasVector := false
	if add, ok := rows[0]["_additional"].(map[string]any); ok {
		v, _ := add["vector"].([]any)
		hasVector = len(v) > 0
	}
	return entryFromRow(rows[0]), hasVector, nil
}

// Close is a no-op; the Weaviate client holds no persistent connection.
func (b *WeaviateBackend) Close() error {
	return nil
}

func graphQLError(result *wvmodels.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if result == nil {
		return errors.New("empty graphql response")
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func getRows(result *wvmodels.GraphQLResponse, cls string) ([]map[string]any, error) {
	data, ok := result.Data["Get"].(map[string]any)
	if !ok {
		return nil, errors.New("get key not found in result")
	}
	list, ok := data[cls].([]any)
	if !ok {
		return nil, nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("invalid element in list of objects")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func entryFromRow(row map[string]any) *models.IndexedEntry {
	e := &models.IndexedEntry{Metadata: make(map[string]string, len(models.MetadataKeys))}
	e.ID, _ = row[payloadEntryID].(string)
	e.Document, _ = row[payloadDocument].(string)
	if p, ok := row[payloadPosition].(float64); ok {
		e.Position = int(p)
	}
	for _, key := range models.MetadataKeys {
		if v, ok := row[key].(string); ok {
			e.Metadata[key] = v
		}
	}
	return e
}

var _ Backend = (*WeaviateBackend)(nil)
