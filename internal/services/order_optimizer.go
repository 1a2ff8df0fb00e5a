package services

import (
	"fmt"
	"iter"
	"travel-fare-service/internal/domain"
)

// MaxInteriorPoints bounds the exhaustive search: 9 interior points already
// means 362,880 permutations per request.
const MaxInteriorPoints = 9

// ValidateCostMatrix rejects matrices OptimalOrder cannot search: empty,
// non-square, or with more interior points than MaxInteriorPoints.
// Non-finite entries are allowed (unreachable pairs).
func ValidateCostMatrix(matrix domain.CostMatrix) error {
	n := len(matrix)
	if n == 0 {
		return fmt.Errorf("%w: cost matrix is empty", domain.ErrInvalidInput)
	}

	for i, row := range matrix {
		if len(row) != n {
			return fmt.Errorf("%w: cost matrix row %d has length %d, want %d", domain.ErrInvalidInput, i, len(row), n)
		}
	}

	if n-2 > MaxInteriorPoints {
		return fmt.Errorf(
			"%w: %d intermediate stops exceed the optimization limit of %d",
			domain.ErrInvalidInput, n-2, MaxInteriorPoints,
		)
	}

	return nil
}

// OptimalOrder finds the cheapest open path through matrix that starts at
// index 0 and ends at index N-1, visiting every interior index once.
//
// Every permutation of the interior indices is evaluated (Heap's algorithm,
// iterative form). The unpermuted order is the first candidate and seeds the
// best cost; later permutations replace it only when strictly cheaper, so
// ties resolve to the permutation generated first. For interior {1, 2} the
// generation order is [1 2], [2 1].
//
// A NaN or +Inf path cost is never strictly cheaper than the current best,
// so unreachable orderings are skipped; if every ordering is non-finite the
// baseline is returned.
//
// The result is a permutation of 0..N-1 with 0 first and N-1 last. The
// function is pure and deterministic. The matrix must be square (see
// ValidateCostMatrix).
func OptimalOrder(matrix domain.CostMatrix) []int {
	n := len(matrix)
	if n <= 2 {
		return identityOrder(n)
	}

	interior := make([]int, n-2)
	for i := range interior {
		interior[i] = i + 1
	}

	best := append([]int(nil), interior...)
	minCost := interiorCost(matrix, interior)

	for p := range permutations(interior) {
		cost := interiorCost(matrix, p)
		if cost < minCost {
			minCost = cost
			copy(best, p)
		}
	}

	order := make([]int, 0, n)
	order = append(order, 0)
	order = append(order, best...)
	return append(order, n-1)
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// PathCost sums matrix costs along order.
func PathCost(matrix domain.CostMatrix, order []int) float64 {
	var cost float64
	for i := 0; i+1 < len(order); i++ {
		cost += matrix[order[i]][order[i+1]]
	}
	return cost
}

// interiorCost is the cost of 0 -> p... -> N-1.
func interiorCost(matrix domain.CostMatrix, p []int) float64 {
	last := len(matrix) - 1

	cost := matrix[0][p[0]]
	for i := 0; i+1 < len(p); i++ {
		cost += matrix[p[i]][p[i+1]]
	}
	return cost + matrix[p[len(p)-1]][last]
}

// permutations yields every permutation of items using the iterative form of
// Heap's algorithm. The first permutation yielded is items itself. The
// yielded slice is reused between iterations; copy it to keep it.
func permutations(items []int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		p := append([]int(nil), items...)
		if !yield(p) {
			return
		}

		c := make([]int, len(p))
		for i := 1; i < len(p); {
			if c[i] < i {
				k := 0
				if i%2 == 1 {
					k = c[i]
				}
				p[i], p[k] = p[k], p[i]
				c[i]++
				i = 1
				if !yield(p) {
					return
				}
				continue
			}
			c[i] = 0
			i++
		}
	}
}
