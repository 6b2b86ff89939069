package redis

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/korag/internal/db"
)

func TestBuildCreateArgs_HNSWVector(t *testing.T) {
	idx := &db.IndexDefinition{
		Name:     "korag:doc:idx",
		Prefixes: []string{"korag:doc:"},
		Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldTag},
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         1024,
				VectorDistance:    db.DistanceCosine,
				VectorM:           32,
				VectorEFConstruct: 400,
			},
		},
	}

	args, err := buildCreateArgs(idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"korag:doc:idx ON HASH",
		"PREFIX 1 korag:doc:",
		"SCHEMA",
		"title TAG",
		"__vector AS vector",
		"TYPE FLOAT32",
		"DIM 1024",
		"DISTANCE_METRIC COSINE",
		"M 32",
		"EF_CONSTRUCTION 400",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
}

func TestBuildCreateArgs_InvalidDefinition(t *testing.T) {
	idx := &db.IndexDefinition{Name: "", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}}

	if _, err := buildCreateArgs(idx); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildFieldArgs_TagWithoutAlias(t *testing.T) {
	args, err := buildFieldArgs(&db.IndexField{Name: "title", Type: db.IndexFieldTag})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	if joined != "title TAG" {
		t.Errorf("args = %q, want %q", joined, "title TAG")
	}
}

func TestBuildVectorFieldArgs_Defaults(t *testing.T) {
	args, err := buildVectorFieldArgs(&db.IndexField{
		Name:      "__vector",
		Type:      db.IndexFieldVector,
		VectorDim: 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	// Defaults: FLAT algorithm, cosine distance, no HNSW params.
	if !strings.Contains(joined, "FLAT") {
		t.Errorf("expected FLAT default, got %q", joined)
	}
	if !strings.Contains(joined, "DISTANCE_METRIC COSINE") {
		t.Errorf("expected COSINE default, got %q", joined)
	}
	if strings.Contains(joined, "EF_CONSTRUCTION") {
		t.Errorf("FLAT index must not carry HNSW params: %q", joined)
	}
}

func TestVectorToBytes(t *testing.T) {
	got := vectorToBytes([]float32{1.0, -2.5})

	if len(got) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(got))
	}

	first := math.Float32frombits(binary.LittleEndian.Uint32([]byte(got)[0:4]))
	second := math.Float32frombits(binary.LittleEndian.Uint32([]byte(got)[4:8]))
	if first != 1.0 || second != -2.5 {
		t.Errorf("round-trip = %f, %f", first, second)
	}
}

func TestVectorToBytes_Empty(t *testing.T) {
	if got := vectorToBytes(nil); got != "" {
		t.Errorf("expected empty string, got %d bytes", len(got))
	}
}
