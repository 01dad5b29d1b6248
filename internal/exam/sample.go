package exam

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyPool is returned when a variant is requested from a test with
// no questions. That is a bank configuration problem, not a client error.
var ErrEmptyPool = errors.New("question pool is empty")

// sampleIndices draws min(sampleSize, poolSize) distinct question
// indices from [0, poolSize) in uniformly random order.
func sampleIndices(poolSize, sampleSize int) ([]int, error) {
	if poolSize <= 0 {
		return nil, ErrEmptyPool
	}
	if sampleSize > poolSize {
		sampleSize = poolSize
	}
	return rand.Perm(poolSize)[:sampleSize], nil
}
