package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/castrumai/examai/internal/model"
)

// fakeEmbedder returns fixed vectors per text, defaulting to a zero vector.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func matcherWith(t *testing.T, vectors map[string][]float32) *FileMatcher {
	t.Helper()
	m, err := NewFileMatcher(context.Background(), &fakeEmbedder{vectors: vectors})
	if err != nil {
		t.Fatalf("NewFileMatcher: %v", err)
	}
	return m
}

func TestMatchRanksAboveThreshold(t *testing.T) {
	m := matcherWith(t, map[string][]float32{
		"Propellers.pdf":     {1, 0, 0},
		"Gas_Turbines.pdf":   {0.7, 0.3, 0},
		"Piston_Engines.pdf": {0, 1, 0},
		"engine blades":      {1, 0, 0},
	})

	got, err := m.Match(context.Background(), "engine blades", 3)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// Propellers scores 1.0, Gas_Turbines 0.7; Piston_Engines scores 0 and
	// falls below the threshold.
	if len(got) != 2 {
		t.Fatalf("got %d matches %v, want 2", len(got), got)
	}
	if got[0] != "Propellers.pdf" || got[1] != "Gas_Turbines.pdf" {
		t.Errorf("matches = %v, want best-first [Propellers.pdf Gas_Turbines.pdf]", got)
	}
}

func TestMatchHonorsTopN(t *testing.T) {
	m := matcherWith(t, map[string][]float32{
		"Propellers.pdf":   {1, 0, 0},
		"Gas_Turbines.pdf": {0.9, 0, 0},
		"Flight_Controls.pdf": {0.8, 0, 0},
		"keyword":          {1, 0, 0},
	})

	got, err := m.Match(context.Background(), "keyword", 1)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 1 || got[0] != "Propellers.pdf" {
		t.Errorf("matches = %v, want [Propellers.pdf]", got)
	}
}

func TestMatchNoHitsIsError(t *testing.T) {
	m := matcherWith(t, map[string][]float32{
		"far away": {0, 0, 1},
	})

	if _, err := m.Match(context.Background(), "far away", 3); !errors.Is(err, model.ErrNoFileMatch) {
		t.Errorf("got %v, want ErrNoFileMatch", err)
	}
}

func TestInnerProduct(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical", []float32{0.6, 0.8}, []float32{0.6, 0.8}, 1.0},
		{"length mismatch", []float32{1, 1, 1}, []float32{1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := innerProduct(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("innerProduct = %f, want %f", got, tt.want)
			}
		})
	}
}
