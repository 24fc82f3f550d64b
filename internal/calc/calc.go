// Package calc implements the arithmetic service: factorial, fibonacci and
// mean behind a small hand-routed HTTP handler.
package calc

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrNegative   = errors.New("negative argument")
	ErrEmptyInput = errors.New("empty input")
)

// Factorial returns n! exactly.
func Factorial(n int64) (*big.Int, error) {
	if n < 0 {
		return nil, errors.WithStack(ErrNegative)
	}
	result := big.NewInt(1)
	for i := int64(2); i <= n; i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result, nil
}

// Fibonacci returns F(n) with F(0) = 0 and F(1) = 1.
func Fibonacci(n int64) (*big.Int, error) {
	if n < 0 {
		return nil, errors.WithStack(ErrNegative)
	}
	a, b := big.NewInt(0), big.NewInt(1)
	for i := int64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.WithStack(ErrEmptyInput)
	}
	n := float64(len(values))
	if sum := lo.Sum(values); !math.IsInf(sum, 0) {
		return sum / n, nil
	}

	// The plain sum overflowed; average the scaled terms instead.
	var mean float64
	for i, v := range values {
		count := float64(i + 1)
		mean += v/count - mean/count
	}
	return mean, nil
}
