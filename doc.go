// Package bamboo provides an approximate set-membership filter that grows
// smoothly as items are inserted.
//
// A bamboo filter answers "have I seen this key?" with no false negatives
// and a small, tunable false positive rate. Like a cuckoo filter, it stores
// short fingerprints in fixed-capacity buckets and resolves collisions by
// displacing fingerprints between each item's two candidate buckets. Unlike
// a plain cuckoo filter, it does not have a fixed capacity: when the load
// factor crosses a threshold, the filter doubles its table and migrates the
// old contents a few buckets at a time, piggybacked on subsequent inserts.
// There is no stop-the-world rebuild and no insert ever pays more than a
// bounded amount of migration work.
//
// # Architecture
//
// Each key is hashed once with xxh3 to a 64-bit digest. The low 16 bits
// become the fingerprint (zero remapped to one); the upper bits select the
// primary bucket. The alternate bucket is derived from the primary index
// and the fingerprint alone, so a stored fingerprint can always be moved
// between its two homes without the original key. Buckets hold up to a
// configurable number of slots, and a full bucket triggers a bounded chain
// of random evictions in the style of cuckoo hashing.
//
// During expansion the filter keeps two tables. Queries check both; inserts
// land in the new table; and each insert drains a segment of old buckets
// into the new table before doing its own work. Every slot carries the
// digest it was derived from, so migration re-derives exact bucket indices
// under the doubled capacity instead of guessing. When the cursor reaches
// the end of the old table, the new table is promoted and the old storage
// is released.
//
// # Choosing Parameters
//
// Use [New] with the number of items you expect to insert:
//
//	// Filter pre-sized for 1 million items
//	f := bamboo.New(1_000_000)
//
// The initial capacity is sized so the filter starts around 80% load at the
// expected item count; inserting more simply triggers expansion. For
// explicit control over bucket count, slots per bucket, the expansion
// threshold, eviction depth and migration segment size, use
// [NewWithConfig].
//
// # False Positives
//
// A query is positive when any slot in the key's candidate buckets holds an
// equal 16-bit fingerprint. With B slots per bucket the false positive rate
// is roughly 2*B/65536 (about 0.012% at B=4), independent of filter size.
// False negatives cannot occur for keys whose insert returned nil, except
// for the rare fingerprints counted by [Filter.MigrationDrops].
//
// # Memory Usage
//
// Each occupied slot stores a 16-bit fingerprint plus the 64-bit digest
// used for exact migration, ten bytes of payload per item before bucket
// overhead. [Filter.MemoryUsage] reports the current total, including the
// secondary table while an expansion is in flight.
//
// # Thread Safety
//
// Filter is NOT thread-safe. A single goroutine must perform all inserts;
// concurrent readers are only safe while no insert is running. Wrap the
// filter in a mutex if you need shared access.
//
// # References
//
//   - Bamboo Filters: Make Resizing Smooth: https://ieeexplore.ieee.org/document/9835262
//   - Cuckoo Filter: Practically Better Than Bloom: https://www.cs.cmu.edu/~dga/papers/cuckoo-conext2014.pdf
package bamboo
