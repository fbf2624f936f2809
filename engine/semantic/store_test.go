package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/gearlore/gearlore/engine/forum"
)

type mockPoints struct {
	lastUpsert *pb.UpsertPoints
	lastDelete *pb.DeletePoints
	upsertErr  error
	deleteErr  error
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.lastUpsert = in
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func (m *mockPoints) Delete(_ context.Context, in *pb.DeletePoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.lastDelete = in
	return &pb.PointsOperationResponse{}, m.deleteErr
}

type mockCollections struct {
	listResp  *pb.ListCollectionsResponse
	listErr   error
	created   *pb.CreateCollection
	createErr error
	deleteErr error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.listResp, m.listErr
}

func (m *mockCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = in
	return &pb.CollectionOperationResponse{Result: true}, m.createErr
}

func (m *mockCollections) Delete(_ context.Context, _ *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return &pb.CollectionOperationResponse{Result: true}, m.deleteErr
}

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("insight-1")
	b := PointID("insight-1")
	c := PointID("insight-2")
	if a != b {
		t.Fatal("same insight must map to the same point")
	}
	if a == c {
		t.Fatal("different insights must map to different points")
	}
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	cols := &mockCollections{
		listResp: &pb.ListCollectionsResponse{
			Collections: []*pb.CollectionDescription{{Name: "insights"}},
		},
	}
	vs := NewWithClients(&mockPoints{}, cols, "insights")
	if err := vs.EnsureCollection(context.Background(), 768); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created != nil {
		t.Fatal("existing collection must not be recreated")
	}
}

func TestEnsureCollection_Creates(t *testing.T) {
	cols := &mockCollections{
		listResp: &pb.ListCollectionsResponse{Collections: []*pb.CollectionDescription{{Name: "other"}}},
	}
	vs := NewWithClients(&mockPoints{}, cols, "insights")
	if err := vs.EnsureCollection(context.Background(), 768); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created == nil {
		t.Fatal("expected create call")
	}
	params := cols.created.GetVectorsConfig().GetParams()
	if params.GetSize() != 768 || params.GetDistance() != pb.Distance_Cosine {
		t.Fatalf("wrong vector params: %v", params)
	}
}

func TestEnsureCollection_ListError(t *testing.T) {
	cols := &mockCollections{listErr: errors.New("rpc fail")}
	vs := NewWithClients(&mockPoints{}, cols, "insights")
	if err := vs.EnsureCollection(context.Background(), 4); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsertInsight(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "insights")

	in := forum.Insight{
		ID:             "i1",
		Type:           forum.InsightKnownIssue,
		Title:          "CVT judder under light throttle",
		PrimaryCarSlug: "honda-civic",
		ForumSlug:      "civicforum",
		Confidence:     0.9,
		Embedding:      []float32{0.1, 0.2, 0.3},
	}
	if err := vs.UpsertInsight(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pts.lastUpsert == nil || len(pts.lastUpsert.GetPoints()) != 1 {
		t.Fatal("expected one point")
	}
	p := pts.lastUpsert.GetPoints()[0]
	if p.GetId().GetUuid() != PointID("i1") {
		t.Fatal("point id must be derived from insight id")
	}
	if p.GetPayload()["insight_id"].GetStringValue() != "i1" {
		t.Fatalf("payload: %v", p.GetPayload())
	}
	if p.GetPayload()["confidence"].GetDoubleValue() != 0.9 {
		t.Fatalf("payload: %v", p.GetPayload())
	}
}

func TestUpsertInsight_NoEmbedding(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "insights")
	if err := vs.UpsertInsight(context.Background(), forum.Insight{ID: "i1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pts.lastUpsert != nil {
		t.Fatal("insight without embedding must not reach qdrant")
	}
}

func TestUpsert_Empty(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "insights")
	if err := vs.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_Error(t *testing.T) {
	pts := &mockPoints{upsertErr: errors.New("fail")}
	vs := NewWithClients(pts, &mockCollections{}, "insights")
	err := vs.Upsert(context.Background(), []VectorRecord{{ID: PointID("x"), Embedding: []float32{1}}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteInsight(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "insights")
	if err := vs.DeleteInsight(context.Background(), "i1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := pts.lastDelete.GetPoints().GetPoints().GetIds()
	if len(ids) != 1 || ids[0].GetUuid() != PointID("i1") {
		t.Fatalf("wrong delete selector: %v", pts.lastDelete)
	}
}

func TestDeleteCollection_Error(t *testing.T) {
	cols := &mockCollections{deleteErr: errors.New("fail")}
	vs := NewWithClients(&mockPoints{}, cols, "insights")
	if err := vs.DeleteCollection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCloseNilConn(t *testing.T) {
	vs := NewWithClients(nil, nil, "insights")
	if err := vs.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
