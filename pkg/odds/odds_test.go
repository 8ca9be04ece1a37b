package odds

import (
	"math"
	"testing"
)

func TestPriceToProbability(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{"heavy favorite", -300, 0.75},
		{"favorite", -150, 0.60},
		{"even favorite", -100, 0.50},
		{"even underdog", 100, 0.50},
		{"underdog", 150, 0.40},
		{"longshot", 800, 100.0 / 900.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriceToProbability(tt.price)
			if !ok {
				t.Fatalf("PriceToProbability(%v) returned no value", tt.price)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PriceToProbability(%v) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestPriceToProbabilityBounds(t *testing.T) {
	for _, price := range []float64{-101, -150, -500, -10000} {
		got, ok := PriceToProbability(price)
		if !ok || got <= 0.5 {
			t.Errorf("favorite price %v should imply > 0.5, got %v", price, got)
		}
	}
	for _, price := range []float64{100, 120, 500, 10000} {
		got, ok := PriceToProbability(price)
		if !ok || got > 0.5 {
			t.Errorf("underdog price %v should imply <= 0.5, got %v", price, got)
		}
	}
}

func TestPriceToProbabilityBadInput(t *testing.T) {
	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, ok := PriceToProbability(price); ok {
			t.Errorf("PriceToProbability(%v) should return no value", price)
		}
	}
}

func TestDevigorize(t *testing.T) {
	fair := Devigorize(map[string]float64{"A": 0.55, "B": 0.50})

	if math.Abs(fair["A"]-0.55/1.05) > 1e-9 {
		t.Errorf("A = %v, want %v", fair["A"], 0.55/1.05)
	}
	if math.Abs(fair["B"]-0.50/1.05) > 1e-9 {
		t.Errorf("B = %v, want %v", fair["B"], 0.50/1.05)
	}

	sum := 0.0
	for _, p := range fair {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("fair probabilities sum to %v, want 1.0", sum)
	}
}

func TestDevigorizeDropsNonPositive(t *testing.T) {
	fair := Devigorize(map[string]float64{"A": 0.6, "B": 0, "C": -0.1})

	if _, ok := fair["B"]; ok {
		t.Error("zero entry should be dropped")
	}
	if _, ok := fair["C"]; ok {
		t.Error("negative entry should be dropped")
	}
	if math.Abs(fair["A"]-1.0) > 1e-9 {
		t.Errorf("sole positive entry should normalize to 1.0, got %v", fair["A"])
	}
}

func TestDevigorizeDegenerate(t *testing.T) {
	if got := Devigorize(map[string]float64{}); len(got) != 0 {
		t.Errorf("empty input should yield empty output, got %v", got)
	}
	if got := Devigorize(map[string]float64{"A": 0, "B": -1}); len(got) != 0 {
		t.Errorf("non-positive input should yield empty output, got %v", got)
	}
}

func TestNormalizePair(t *testing.T) {
	// Already summing to 1: unchanged.
	a, b := NormalizePair(0.6, 0.4)
	if a != 0.6 || b != 0.4 {
		t.Errorf("NormalizePair(0.6, 0.4) = %v, %v", a, b)
	}

	// Margin present: scaled to sum 1.
	a, b = NormalizePair(0.55, 0.50)
	if math.Abs(a+b-1.0) > 1e-9 {
		t.Errorf("normalized pair sums to %v, want 1", a+b)
	}
	if math.Abs(a-0.55/1.05) > 1e-9 {
		t.Errorf("a = %v, want %v", a, 0.55/1.05)
	}

	// Zero sum: explicit pass-through.
	a, b = NormalizePair(0, 0)
	if a != 0 || b != 0 {
		t.Errorf("zero-sum pair should pass through, got %v, %v", a, b)
	}
}
