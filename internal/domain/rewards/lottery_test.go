package rewards_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

func TestWheelPick(t *testing.T) {
	wheel := rewards.NewWheel(rewards.DefaultCatalog().Wheel)

	tests := []struct {
		name string
		r    float64
		want string
	}{
		{name: "zero", r: 0, want: "pebble"},
		{name: "on first boundary", r: 0.3, want: "pebble"},
		{name: "just past first boundary", r: 0.3000001, want: "copper"},
		{name: "middle", r: 0.7, want: "silver"},
		{name: "ruby band", r: 0.95, want: "ruby"},
		{name: "largest draw", r: math.Nextafter(1, 0), want: "jackpot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wheel.Segments()[wheel.Pick(tt.r)].ID
			if got != tt.want {
				t.Errorf("Wheel.Pick(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestWheelClampsFinalBoundary(t *testing.T) {
	// ten tenths accumulate to slightly less than 1.0
	segments := make([]rewards.WheelSegment, 10)
	for i := range segments {
		segments[i] = rewards.WheelSegment{ID: string(rune('a' + i)), Probability: 0.1}
	}
	wheel := rewards.NewWheel(segments)

	if got := wheel.Pick(math.Nextafter(1, 0)); got != 9 {
		t.Errorf("Wheel.Pick(max) = %d, want last segment", got)
	}
}

func TestWheelFairness(t *testing.T) {
	const spins = 100_000
	segments := rewards.DefaultCatalog().Wheel
	wheel := rewards.NewWheel(segments)
	rng := rand.New(rand.NewPCG(20240310, 42))

	counts := make([]int, len(segments))
	for i := 0; i < spins; i++ {
		counts[wheel.Pick(rng.Float64())]++
	}

	for i, s := range segments {
		observed := float64(counts[i]) / spins
		// five standard deviations of a binomial proportion
		tolerance := 5 * math.Sqrt(s.Probability*(1-s.Probability)/spins)
		if math.Abs(observed-s.Probability) > tolerance {
			t.Errorf("segment %s observed %.4f, want %.4f ± %.4f", s.ID, observed, s.Probability, tolerance)
		}
	}
}
