package services

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestTokenize(t *testing.T) {
	v := &Vectorizer{StopWords: DefaultStopWords}

	tests := []struct {
		title string
		want  []string
	}{
		{"Licuadora Oster de 10 Velocidades", []string{"licuadora", "oster", "10", "velocidades"}},
		{"Zapatos Nike Air-Max, talla 42!", []string{"zapatos", "nike", "air", "max", "talla", "42"}},
		{"Envío gratis a Caracas", []string{"envío", "gratis", "caracas"}},
		{"x y z", nil},
	}
	for _, tt := range tests {
		got := v.Tokenize(tt.title)
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.title, diff)
		}
	}
}

func TestFitTransformVectors(t *testing.T) {
	v := &Vectorizer{StopWords: DefaultStopWords}
	vectors, vocab, err := v.FitTransform([]string{
		"licuadora oster",
		"licuadora oster vidrio",
		"zapatos nike",
	})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	wantVocab := []string{"licuadora", "nike", "oster", "vidrio", "zapatos"}
	if diff := cmp.Diff(wantVocab, vocab); diff != "" {
		t.Fatalf("vocab mismatch (-want +got):\n%s", diff)
	}

	for i, vec := range vectors {
		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("row %d has squared norm %v; want 1", i, norm)
		}
	}

	// Topics share no terms, so their vectors are orthogonal.
	var dot float64
	for j := range vectors[0] {
		dot += vectors[0][j] * vectors[2][j]
	}
	if dot != 0 {
		t.Errorf("cross-topic dot product = %v; want 0", dot)
	}

	// "vidrio" appears in one title, so it weighs more than the shared terms.
	if vectors[1][3] <= vectors[1][0] {
		t.Errorf("rare term weight %v should exceed shared term weight %v", vectors[1][3], vectors[1][0])
	}
}

func TestFitTransformMaxFeatures(t *testing.T) {
	v := &Vectorizer{MaxFeatures: 2}
	_, vocab, err := v.FitTransform([]string{"rojo azul verde", "rojo azul", "rojo"})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	if diff := cmp.Diff([]string{"azul", "rojo"}, vocab); diff != "" {
		t.Errorf("vocab mismatch (-want +got):\n%s", diff)
	}
}

func TestFitTransformEmptyVocabulary(t *testing.T) {
	v := &Vectorizer{StopWords: DefaultStopWords}
	_, _, err := v.FitTransform([]string{"de la", "con para y"})
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("FitTransform() error = %v; want ErrEmptyVocabulary", err)
	}
}
