package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperjump/foodrec/internal/models"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Payload keys that are not food metadata.
const (
	payloadEntryID  = "entry_id"
	payloadDocument = "document"
	payloadPosition = "position"
)

// pointNamespace seeds the deterministic point UUIDs derived from entry ids.
var pointNamespace = uuid.MustParse("6f3f8a52-6c1e-4d8e-9a57-0f0d5e1c2b7a")

// QdrantBackend stores collections in a Qdrant server over gRPC.
type QdrantBackend struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
}

// NewQdrantBackend creates a gRPC client for the Qdrant server at host:port.
// The connection is established lazily on first call.
func NewQdrantBackend(host string, port int) (*QdrantBackend, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantBackend{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// Name identifies the backend in logs and health reports.
func (b *QdrantBackend) Name() string {
	return "qdrant"
}

// PointID maps an entry id to the UUID Qdrant stores it under.
func PointID(collection, entryID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"/"+entryID)).String()
}

// CreateCollection creates a cosine-distance collection sized for the collection's vectors.
func (b *QdrantBackend) CreateCollection(ctx context.Context, coll *models.Collection) error {
	_, err := b.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: coll.Name,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(coll.Dimensions),
			Distance: pb.Distance_Cosine,
		}}},
	})
	return err
}

// DeleteCollection drops the collection if it exists.
func (b *QdrantBackend) DeleteCollection(ctx context.Context, name string) (bool, error) {
	exists, err := b.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: name})
	if err != nil {
		return false, err
	}
	if !exists.GetResult().GetExists() {
		return false, nil
	}
	resp, err := b.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: name})
	if err != nil {
		return false, err
	}
	return resp.GetResult(), nil
}

// Upsert writes all entries in one request and waits until they are searchable.
func (b *QdrantBackend) Upsert(ctx context.Context, collection string, entries []*models.IndexedEntry) error {
	points := make([]*pb.PointStruct, len(entries))
	for i, e := range entries {
		payload := map[string]*pb.Value{
			payloadEntryID:  {Kind: &pb.Value_StringValue{StringValue: e.ID}},
			payloadDocument: {Kind: &pb.Value_StringValue{StringValue: e.Document}},
			payloadPosition: {Kind: &pb.Value_IntegerValue{IntegerValue: int64(e.Position)}},
		}
		for k, v := range e.Metadata {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(collection, e.ID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: e.Embedding}}},
			Payload: payload,
		}
	}

	wait := true
	_, err := b.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	})
	return err
}

// Query runs a cosine search. Qdrant scores cosine as similarity, so distance = 1 - score.
func (b *QdrantBackend) Query(ctx context.Context, collection string, vec []float32, k int) ([]*models.Hit, error) {
	resp, err := b.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vec,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}

	hits := make([]*models.Hit, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		hit := hitFromPayload(pt.GetPayload())
		hit.Distance = 1 - float64(pt.GetScore())
		if hit.ID == "" {
			hit.ID = pt.GetId().GetUuid()
		}
		hits[i] = hit
	}
	return hits, nil
}

func hitFromPayload(payload map[string]*pb.Value) *models.Hit {
	hit := &models.Hit{Metadata: make(map[string]string, len(payload))}
	for k, v := range payload {
		switch k {
		case payloadEntryID:
			hit.ID = v.GetStringValue()
		case payloadDocument:
			hit.Document = v.GetStringValue()
		case payloadPosition:
		default:
			hit.Metadata[k] = v.GetStringValue()
		}
	}
	return hit
}

// Count returns the exact number of points in the collection.
func (b *QdrantBackend) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	resp, err := b.points.Count(ctx, &pb.CountPoints{CollectionName: collection, Exact: &exact})
	if err != nil {
		return 0, err
	}
	return int(resp.GetResult().GetCount()), nil
}

// Sample scrolls to the first point, asking for its vector.
func (b *QdrantBackend) Sample(ctx context.Context, collection string) (*models.IndexedEntry, bool, error) {
	limit := uint32(1)
	resp, err := b.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: collection,
		Limit:          &limit,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, false, err
	}
	if len(resp.GetResult()) == 0 {
		return nil, false, nil
	}
	pt := resp.GetResult()[0]
	hit := hitFromPayload(pt.GetPayload())
	entry := &models.IndexedEntry{
		ID:       hit.ID,
		Document: hit.Document,
		Metadata: hit.Metadata,
		Position: int(pt.GetPayload()[payloadPosition].GetIntegerValue()),
	}
	return entry, pt.GetVectors() != nil, nil
}

// Close closes the gRPC connection.
func (b *QdrantBackend) Close() error {
	return b.conn.Close()
}

var _ Backend = (*QdrantBackend)(nil)
