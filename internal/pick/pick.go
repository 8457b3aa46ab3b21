package pick

import (
	"errors"
	"math/rand"
)

// ErrInvalidWeights is returned when a weight set has no usable weight mass.
var ErrInvalidWeights = errors.New("weights must be positive with a positive total")

// ErrEmptySet is returned when there is nothing to pick from.
var ErrEmptySet = errors.New("cannot pick from an empty set")

type Item[T any] struct {
	Value  T
	Weight float64
}

// Weighted returns one item with probability proportional to its weight.
// Uses a single uniform draw; callers get no state between calls.
func Weighted[T any](items []Item[T]) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptySet
	}
	if len(items) == 1 {
		if items[0].Weight <= 0 {
			return zero, ErrInvalidWeights
		}
		return items[0].Value, nil
	}

	var total float64
	for _, it := range items {
		if it.Weight <= 0 {
			return zero, ErrInvalidWeights
		}
		total += it.Weight
	}
	if total <= 0 {
		return zero, ErrInvalidWeights
	}

	target := rand.Float64() * total
	for _, it := range items {
		target -= it.Weight
		if target < 0 {
			return it.Value, nil
		}
	}
	// Floating point can leave target at exactly zero after the last item.
	return items[len(items)-1].Value, nil
}

// Uniform returns one item chosen uniformly at random.
func Uniform[T any](items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptySet
	}
	return items[rand.Intn(len(items))], nil
}
