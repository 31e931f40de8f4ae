package vector

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/rushteam/shoprec/core"
)

const eps = 1e-9

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase and stopwords", "A Sleek Laptop for all your needs", []string{"sleek", "laptop", "needs"}},
		{"single chars dropped", "x y z USB-C", []string{"usb"}},
		{"punctuation splits", "High-Performance Mouse (Electronics).", []string{"high", "performance", "mouse", "electronics"}},
		{"digits kept", "Book 12", []string{"book", "12"}},
		{"combining marks split words", "Cafe\u0301 Cre\u0300me", []string{"cafe", "cre"}},
		{"precomposed accents kept", "Café Crème", []string{"café", "crème"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildIndex_SortedVocabulary(t *testing.T) {
	ix := BuildIndex([]core.Product{
		{ID: "1", Name: "Wireless Mouse", Category: "Electronics", Description: "ergonomic design"},
		{ID: "2", Name: "Coffee Maker", Category: "Home Appliances", Description: "fast brewing"},
	})
	if !sort.StringsAreSorted(ix.Vocabulary) {
		t.Errorf("vocabulary not sorted: %v", ix.Vocabulary)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}
	for i, v := range ix.Vectors {
		if len(v) != ix.Dimension() {
			t.Errorf("vector %d dimension = %d, want %d", i, len(v), ix.Dimension())
		}
		if n := Norm(v); math.Abs(n-1) > eps {
			t.Errorf("vector %d norm = %v, want 1", i, n)
		}
	}
}

func TestBuildIndex_Weights(t *testing.T) {
	// "mouse" 出现在两个文档，"red" 只出现在一个文档
	ix := BuildIndex([]core.Product{
		{ID: "1", Name: "red mouse"},
		{ID: "2", Name: "mouse mouse"},
	})
	want := []string{"mouse", "red"}
	if !reflect.DeepEqual(ix.Vocabulary, want) {
		t.Fatalf("vocabulary = %v, want %v", ix.Vocabulary, want)
	}
	idfRed := math.Log(3.0/2.0) + 1
	if math.Abs(ix.IDF[0]-1) > eps || math.Abs(ix.IDF[1]-idfRed) > eps {
		t.Errorf("IDF = %v, want [1 %v]", ix.IDF, idfRed)
	}
	v, _ := ix.Vector("1")
	norm := math.Sqrt(1 + idfRed*idfRed)
	if math.Abs(v[0]-1/norm) > eps || math.Abs(v[1]-idfRed/norm) > eps {
		t.Errorf("vector 1 = %v", v)
	}
	v2, _ := ix.Vector("2")
	if math.Abs(v2[0]-1) > eps || v2[1] != 0 {
		t.Errorf("vector 2 = %v, want [1 0]", v2)
	}
}

func TestBuildIndex_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		products []core.Product
		dim      int
	}{
		{"empty catalog", nil, 0},
		{"all stopwords", []core.Product{{ID: "1", Name: "the", Category: "and", Description: "of it"}}, 0},
		{"single product", []core.Product{{ID: "1", Name: "Lamp"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := BuildIndex(tt.products)
			if ix.Dimension() != tt.dim {
				t.Errorf("Dimension() = %d, want %d", ix.Dimension(), tt.dim)
			}
			if ix.Len() != len(tt.products) {
				t.Errorf("Len() = %d, want %d", ix.Len(), len(tt.products))
			}
			for _, v := range ix.Vectors {
				s, err := Cosine(v, v)
				if err != nil {
					t.Fatalf("Cosine() error = %v", err)
				}
				if tt.dim == 0 && s != 0 {
					t.Errorf("degenerate cosine = %v, want 0", s)
				}
			}
		})
	}
}

func TestCosine(t *testing.T) {
	v := []float64{0.3, 0.5, 0.8}
	s, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("Cosine() error = %v", err)
	}
	if math.Abs(s-1) > eps {
		t.Errorf("Cosine(v, v) = %v, want 1", s)
	}

	s, err = Cosine(v, []float64{0, 0, 0})
	if err != nil || s != 0 {
		t.Errorf("Cosine(v, 0) = %v, %v, want 0, nil", s, err)
	}

	s, err = Cosine([]float64{1, 0}, []float64{0, 1})
	if err != nil || s != 0 {
		t.Errorf("orthogonal cosine = %v, %v", s, err)
	}

	if _, err := Cosine([]float64{1}, []float64{1, 2}); !core.IsInvariantViolation(err) {
		t.Errorf("dimension mismatch error = %v, want INVARIANT_VIOLATION", err)
	}
}

func TestComposeUserVector(t *testing.T) {
	ix := BuildIndex([]core.Product{
		{ID: "a", Name: "red mouse"},
		{ID: "b", Name: "blue keyboard"},
	})

	p, _ := core.BuildUserProfile("u", []core.InteractionRecord{
		{ProductID: "a", Type: core.InteractionViewed},
		{ProductID: "b", Type: core.InteractionPurchased},
		{ProductID: "gone", Type: core.InteractionPurchased},
	})
	vec, ok := ComposeUserVector(p, ix)
	if !ok {
		t.Fatal("expected signal")
	}
	va, _ := ix.Vector("a")
	vb, _ := ix.Vector("b")
	for i := range vec {
		want := 1*va[i] + 3*vb[i]
		if math.Abs(vec[i]-want) > eps {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want)
		}
	}

	unresolved, _ := core.BuildUserProfile("u", []core.InteractionRecord{
		{ProductID: "gone", Type: core.InteractionViewed},
	})
	if _, ok := ComposeUserVector(unresolved, ix); ok {
		t.Error("unresolved profile should yield no signal")
	}
	if _, ok := ComposeUserVector(core.NewUserProfile("u"), ix); ok {
		t.Error("empty profile should yield no signal")
	}
}
