package services

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"travel-fare-service/internal/domain"
)

func TestOptimalOrderTieKeepsFirstPermutation(t *testing.T) {
	m := domain.CostMatrix{
		{0, 10, 15, 20},
		{10, 0, 35, 25},
		{15, 35, 0, 30},
		{20, 25, 30, 0},
	}

	got := OptimalOrder(m)
	want := []int{0, 1, 2, 3}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	if c := PathCost(m, got); c != 75 {
		t.Fatalf("cost = %v, want 75", c)
	}
	if c := PathCost(m, []int{0, 2, 1, 3}); c != 75 {
		t.Fatalf("alternative cost = %v, want 75", c)
	}
}

func TestOptimalOrderPicksStrictlyCheaper(t *testing.T) {
	m := domain.CostMatrix{
		{0, 50, 1, 9},
		{9, 0, 9, 1},
		{9, 1, 0, 50},
		{9, 9, 9, 0},
	}

	got := OptimalOrder(m)
	want := []int{0, 2, 1, 3}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestOptimalOrderSmallInputs(t *testing.T) {
	tests := []struct {
		name string
		m    domain.CostMatrix
		want []int
	}{
		{"empty", domain.CostMatrix{}, []int{}},
		{"one", domain.CostMatrix{{0}}, []int{0}},
		{"two", domain.CostMatrix{{0, 5}, {7, 0}}, []int{0, 1}},
		{"three", domain.CostMatrix{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}}, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OptimalOrder(tt.m); !slices.Equal(got, tt.want) {
				t.Fatalf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptimalOrderNonFinite(t *testing.T) {
	inf := math.Inf(1)

	// Unreachable leg on the baseline: any finite ordering wins.
	m := domain.CostMatrix{
		{0, inf, 1, 9},
		{9, 0, 9, 1},
		{9, 1, 0, 9},
		{9, 9, 9, 0},
	}
	if got, want := OptimalOrder(m), []int{0, 2, 1, 3}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	// A NaN baseline is never replaced.
	m[0][1] = math.NaN()
	if got, want := OptimalOrder(m), []int{0, 1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("NaN baseline: order = %v, want %v", got, want)
	}

	// NaN on a non-baseline ordering is skipped.
	m = domain.CostMatrix{
		{0, 1, math.NaN(), 9},
		{9, 0, 1, 9},
		{9, 1, 0, 1},
		{9, 9, 9, 0},
	}
	if got, want := OptimalOrder(m), []int{0, 1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("NaN alternative: order = %v, want %v", got, want)
	}
}

// bruteForceMin returns the minimum open-path cost by plain recursion.
func bruteForceMin(m domain.CostMatrix) float64 {
	n := len(m)
	used := make([]bool, n)
	best := math.Inf(1)

	var walk func(last, depth int, cost float64)
	walk = func(last, depth int, cost float64) {
		if depth == n-2 {
			best = min(best, cost+m[last][n-1])
			return
		}
		for i := 1; i < n-1; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			walk(i, depth+1, cost+m[last][i])
			used[i] = false
		}
	}
	walk(0, 0, 0)
	return best
}

func TestOptimalOrderMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 3; n <= 8; n++ {
		for trial := 0; trial < 20; trial++ {
			m := make(domain.CostMatrix, n)
			for i := range m {
				m[i] = make([]float64, n)
				for j := range m[i] {
					if i != j {
						m[i][j] = float64(rng.IntN(100))
					}
				}
			}

			order := OptimalOrder(m)
			if len(order) != n || order[0] != 0 || order[n-1] != n-1 {
				t.Fatalf("n=%d: endpoints not fixed: %v", n, order)
			}
			sorted := slices.Sorted(slices.Values(order))
			for i, v := range sorted {
				if v != i {
					t.Fatalf("n=%d: not a permutation: %v", n, order)
				}
			}

			if got, want := PathCost(m, order), bruteForceMin(m); got != want {
				t.Fatalf("n=%d trial=%d: cost = %v, want %v", n, trial, got, want)
			}
			if again := OptimalOrder(m); !slices.Equal(order, again) {
				t.Fatalf("n=%d: not deterministic: %v vs %v", n, order, again)
			}
		}
	}
}

func TestPermutationsHeapOrder(t *testing.T) {
	var got [][]int
	for p := range permutations([]int{1, 2, 3}) {
		got = append(got, slices.Clone(p))
	}

	want := [][]int{
		{1, 2, 3}, {2, 1, 3}, {3, 1, 2}, {1, 3, 2}, {2, 3, 1}, {3, 2, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d permutations, want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("permutation %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPermutationsCount(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	seen := map[[6]int]bool{}
	for p := range permutations(items) {
		seen[[6]int(p)] = true
	}
	if len(seen) != 720 {
		t.Fatalf("distinct permutations = %d, want 720", len(seen))
	}
}

func zeroMatrix(n int) domain.CostMatrix {
	m := make(domain.CostMatrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func TestValidateCostMatrix(t *testing.T) {
	tests := []struct {
		name    string
		m       domain.CostMatrix
		wantErr bool
	}{
		{"empty", domain.CostMatrix{}, true},
		{"ragged", domain.CostMatrix{{0, 1}, {1}}, true},
		{"too many interior", zeroMatrix(MaxInteriorPoints + 3), true},
		{"limit", zeroMatrix(MaxInteriorPoints + 2), false},
		{"ok", domain.CostMatrix{{0, 1}, {1, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCostMatrix(tt.m)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
