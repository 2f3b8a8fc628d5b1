package bamboo

import "github.com/zeebo/xxh3"

// altIndexMix is the odd multiplication constant (from MurmurHash2) that
// spreads the fingerprint before it is folded into the alternate index.
const altIndexMix = 0x5bd1e995

// digest computes the 64-bit xxh3 hash of a key. All index and fingerprint
// bits are derived from this one value.
func digest(key []byte) uint64 {
	return xxh3.Hash(key)
}

// digestString computes the xxh3 hash of a string key without the
// allocation of converting it to []byte.
func digestString(s string) uint64 {
	return xxh3.HashString(s)
}

// fingerprintOf extracts the 16-bit tag stored in place of the key.
// Zero is reserved as the empty-slot sentinel, so it maps to one.
func fingerprintOf(h uint64) uint16 {
	fp := uint16(h)
	if fp == 0 {
		return 1
	}
	return fp
}

// bucketIndex returns the primary bucket index for a digest. The bits above
// the fingerprint are used so the index stays decorrelated from it.
// mask must be numBuckets-1 with numBuckets a power of two.
func bucketIndex(h uint64, mask uint64) uint64 {
	return (h >> 16) & mask
}

// altBucketIndex returns the other candidate bucket for a fingerprint at
// index i. The mapping is an involution under a power-of-two bucket count:
// applying it twice with the same fingerprint yields i again, which is what
// lets evicted fingerprints bounce between exactly two homes.
func altBucketIndex(i uint64, fp uint16, mask uint64) uint64 {
	return (i ^ (uint64(fp) * altIndexMix)) & mask
}
