// Package simhash computes 64-bit SimHash fingerprints. Row markup is
// fingerprinted so that a change of chart layout between runs shows up as a
// large Hamming distance even when the extracted values look the same.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// DriftThreshold is the distance above which two layouts are considered different.
const DriftThreshold = 12

// Fingerprint computes the SimHash of whitespace separated tokens in text.
func Fingerprint(text string) uint64 {
	return FingerprintTokens(strings.Fields(text))
}

// FingerprintTokens computes the SimHash of tokens, each weighted equally.
func FingerprintTokens(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether a and b are within threshold bits of each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
