package assign

import (
	"math/rand/v2"
	"slices"
)

// Sample returns a uniformly random subset of pool of size
// min(count, len(pool)), without replacement and in no guaranteed order.
// A count of zero means "all": the pool is returned unchanged.
func Sample(pool []string, count int) []string {
	if count == 0 {
		return pool
	}

	shuffled := slices.Clone(pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
