package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_KnowledgeIndex(t *testing.T) {
	idx := NewIndex("ragchat:knowledge:idx").
		Prefix("ragchat:knowledge:").
		Tag("source", "category", "title").
		VectorHNSW("vector", 384, DistanceCosine, 16, 200).
		MustBuild()

	if len(idx.Fields) != 4 {
		t.Fatalf("fields count = %d, want 4", len(idx.Fields))
	}
	for _, f := range idx.Fields[:3] {
		if f.Type != IndexFieldTag || !f.TagCaseSensitive || f.TagSeparator != "|" {
			t.Errorf("tag field %q = %+v", f.Name, f)
		}
	}
	v, ok := idx.VectorField()
	if !ok {
		t.Fatal("expected vector field")
	}
	if v.VectorAlgo != VectorHNSW || v.VectorDim != 384 || v.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", v)
	}
	if v.VectorM != 16 || v.VectorEFConstruct != 200 {
		t.Errorf("HNSW params = %d/%d, want 16/200", v.VectorM, v.VectorEFConstruct)
	}
}

func TestIndexBuilder_VectorFlat(t *testing.T) {
	idx := NewIndex("flat-idx").VectorFlat("vector", 8, DistanceL2).MustBuild()
	v, _ := idx.VectorField()
	if v.VectorAlgo != VectorFlat || v.VectorDistance != DistanceL2 {
		t.Errorf("vector field = %+v", v)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "vector without dim",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").VectorFlat("v", 0, DistanceCosine).Build()
			},
			wantErr: "positive DIM",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("source", "source").Build()
			},
			wantErr: "duplicate field",
		},
		{
			name: "two vectors",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").VectorFlat("a", 2, DistanceCosine).VectorFlat("b", 2, DistanceCosine).Build()
			},
			wantErr: "at most one vector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		Tag("source").
		VectorHNSW("vector", 384, DistanceCosine, 0, 0).
		MustBuild()

	want := "FT.CREATE my-idx ON HASH PREFIX 1 doc: SCHEMA source TAG vector VECTOR HNSW DIM 384"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in      string
		want    DistanceMetric
		wantErr bool
	}{
		{"cosine", DistanceCosine, false},
		{"", DistanceCosine, false},
		{"l2", DistanceL2, false},
		{"IP", DistanceIP, false},
		{"manhattan", "", true},
	}
	for _, tc := range tests {
		got, err := ParseDistance(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseDistance(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	if a, err := ParseAlgorithm("hnsw"); err != nil || a != VectorHNSW {
		t.Errorf("ParseAlgorithm(hnsw) = %q, %v", a, err)
	}
	if a, err := ParseAlgorithm("flat"); err != nil || a != VectorFlat {
		t.Errorf("ParseAlgorithm(flat) = %q, %v", a, err)
	}
	if _, err := ParseAlgorithm("ivf"); err == nil {
		t.Error("expected error for ivf")
	}
}
