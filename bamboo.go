package bamboo

import (
	"errors"
	"math/rand"
)

// ErrOverflow is returned by Insert when both candidate buckets and their
// eviction chains are exhausted. The filter state is unchanged: the key was
// not recorded and Size does not move.
var ErrOverflow = errors.New("bamboo: bucket neighborhood full, fingerprint not placed")

// Filter is a cuckoo-hashed membership filter with smooth, segment-by-segment
// table expansion. See the package documentation for the design.
//
// Filter is NOT thread-safe.
type Filter struct {
	cfg Config

	// old is the authoritative table. next is non-nil only while an
	// expansion is in flight and is always twice old's length.
	old  *table
	next *table

	// cursor is the next old-table bucket to drain into next.
	cursor uint64

	size  uint64
	drops uint64

	rng *rand.Rand
}

// New creates a filter pre-sized for the expected number of items using
// DefaultConfig. Inserting more than expected is fine; the filter expands.
func New(expectedItems uint64) *Filter {
	cfg := DefaultConfig()
	cfg.InitialBuckets = OptimalCapacity(expectedItems, cfg.SlotsPerBucket)
	if cfg.SegmentSize > cfg.InitialBuckets {
		cfg.SegmentSize = cfg.InitialBuckets
	}
	f, err := NewWithConfig(cfg)
	if err != nil {
		// DefaultConfig with a power-of-two capacity always validates.
		panic(err)
	}
	return f
}

// NewWithConfig creates a filter with explicit parameters. InitialBuckets
// is rounded up to the next power of two before validation.
func NewWithConfig(cfg Config) (*Filter, error) {
	if cfg.InitialBuckets == 0 {
		return nil, ErrInvalidCapacity
	}
	cfg.InitialBuckets = nextPowerOf2(cfg.InitialBuckets)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	return &Filter{
		cfg: cfg,
		old: newTable(cfg.InitialBuckets, cfg.SlotsPerBucket),
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// Insert records a key. It returns nil on success (including when the key
// already tests positive, in which case nothing changes) and ErrOverflow
// when no slot could be found within the eviction bounds.
func (f *Filter) Insert(key []byte) error {
	return f.insert(digest(key))
}

// InsertString records a string key without allocating.
func (f *Filter) InsertString(s string) error {
	return f.insert(digestString(s))
}

func (f *Filter) insert(h uint64) error {
	if f.lookup(h) {
		return nil
	}

	f.maybeExpand()
	f.advanceMigration()

	t := f.old
	if f.next != nil {
		// Mid-migration inserts go straight to the new table so they
		// survive the swap at finalization.
		t = f.next
	}
	if !f.place(t, slot{fp: fingerprintOf(h), digest: h}) {
		return ErrOverflow
	}
	f.size++
	return nil
}

// Contains reports whether key might have been inserted. A false result is
// definitive; a true result may be a fingerprint collision.
func (f *Filter) Contains(key []byte) bool {
	return f.lookup(digest(key))
}

// ContainsString is Contains for string keys, without allocating.
func (f *Filter) ContainsString(s string) bool {
	return f.lookup(digestString(s))
}

func (f *Filter) lookup(h uint64) bool {
	fp := fingerprintOf(h)

	i1 := bucketIndex(h, f.old.mask)
	if f.old.has(i1, fp) || f.old.has(altBucketIndex(i1, fp, f.old.mask), fp) {
		return true
	}

	if f.next != nil {
		n1 := bucketIndex(h, f.next.mask)
		if f.next.has(n1, fp) || f.next.has(altBucketIndex(n1, fp, f.next.mask), fp) {
			return true
		}
	}
	return false
}

// place tries the primary bucket, its eviction chain, then the alternate
// bucket and its chain, in that order.
func (f *Filter) place(t *table, s slot) bool {
	i1 := bucketIndex(s.digest, t.mask)
	if t.tryPut(i1, s) {
		return true
	}
	if f.kick(t, i1, s) {
		return true
	}
	i2 := altBucketIndex(i1, s.fp, t.mask)
	if t.tryPut(i2, s) {
		return true
	}
	return f.kick(t, i2, s)
}

// kick walks a bounded eviction chain starting at full bucket i: displace a
// random occupant, send it to its alternate bucket, and repeat with the
// displaced slot until one lands or the depth runs out. Displacing a slot
// with an equal fingerprint is a no-op swap, but the chain still advances
// to the alternate bucket, so equal fingerprints cannot loop it. A chain
// that runs out of depth undoes its swaps, leaving the table as it was.
func (f *Filter) kick(t *table, i uint64, s slot) bool {
	var path []uint64 // bucket of each swap
	var placed []slot // slot swapped into that bucket
	for n := 0; n < f.cfg.MaxEvictions; n++ {
		path, placed = append(path, i), append(placed, s)
		s = t.swapRandom(f.rng, i, s)
		i = altBucketIndex(i, s.fp, t.mask)
		if t.tryPut(i, s) {
			return true
		}
	}
	for k := len(path) - 1; k >= 0; k-- {
		b := t.buckets[path[k]]
		for j := range b {
			if b[j] == placed[k] {
				b[j], s = s, placed[k]
				break
			}
		}
	}
	return false
}

// maybeExpand starts an expansion when the load factor has crossed the
// threshold and none is in flight. The new table is allocated here; the
// draining happens segment by segment in advanceMigration.
func (f *Filter) maybeExpand() {
	if f.next != nil {
		return
	}
	if f.LoadFactor() <= f.cfg.LoadFactorThreshold {
		return
	}
	f.next = newTable(f.old.numBuckets()*2, f.cfg.SlotsPerBucket)
	f.cursor = 0
}

// advanceMigration drains one segment of old buckets into the new table,
// then promotes the new table once the cursor reaches the end.
func (f *Filter) advanceMigration() {
	if f.next == nil {
		return
	}

	end := f.cursor + f.cfg.SegmentSize
	if end > f.old.numBuckets() {
		end = f.old.numBuckets()
	}
	for b := f.cursor; b < end; b++ {
		for _, s := range f.old.buckets[b] {
			if !f.place(f.next, s) {
				// No slot even after eviction. The fingerprint is lost;
				// record it rather than stalling the migration.
				f.drops++
			}
		}
		f.old.clear(b)
	}
	f.cursor = end

	if f.cursor == f.old.numBuckets() {
		f.old = f.next
		f.next = nil
		f.cursor = 0
	}
}

// Size returns the number of accepted inserts since construction.
func (f *Filter) Size() uint64 {
	return f.size
}

// Capacity returns the current bucket count: the sum of both tables while
// an expansion is in flight, the single table's length otherwise.
func (f *Filter) Capacity() uint64 {
	c := f.old.numBuckets()
	if f.next != nil {
		c += f.next.numBuckets()
	}
	return c
}

// Expanding reports whether a migration is in flight.
func (f *Filter) Expanding() bool {
	return f.next != nil
}

// LoadFactor returns size over the old table's total slot count, the ratio
// the expansion trigger compares against the threshold.
func (f *Filter) LoadFactor() float64 {
	return float64(f.size) / float64(f.old.numBuckets()*uint64(f.cfg.SlotsPerBucket))
}

// MigrationDrops returns how many fingerprints were lost because no slot
// could be found for them during migration. Keys behind dropped
// fingerprints may report false negatives; the count is exposed so callers
// can observe that instead of being lied to.
func (f *Filter) MigrationDrops() uint64 {
	return f.drops
}

// MemoryUsage returns the approximate bytes held by the filter's tables.
func (f *Filter) MemoryUsage() uint64 {
	total := f.old.memoryUsage()
	if f.next != nil {
		total += f.next.memoryUsage()
	}
	return total
}
