package benchmarks

import (
	"fmt"
	"testing"

	bloom "github.com/bits-and-blooms/bloom/v3"
	panmari "github.com/panmari/cuckoofilter"
	seiflotfy "github.com/seiflotfy/cuckoofilter"
	bamboo "github.com/v-brkic/Bamboo-filter"
)

const (
	benchItems  = 1_000_000
	benchFPRate = 0.01
)

// Pre-generate test data to avoid measuring key generation
var testKeys [][]byte

func init() {
	testKeys = make([][]byte, benchItems)
	for i := range benchItems {
		testKeys[i] = fmt.Appendf(nil, "key-%d", i)
	}
}

// ============================================================================
// Sequential Insert Benchmarks
// ============================================================================

func BenchmarkInsertSequential_Bamboo(b *testing.B) {
	f := bamboo.New(benchItems)
	b.ResetTimer()
	for i := range b.N {
		_ = f.Insert(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_SeiflotfyCuckoo(b *testing.B) {
	f := seiflotfy.NewFilter(benchItems)
	b.ResetTimer()
	for i := range b.N {
		f.Insert(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_PanmariCuckoo(b *testing.B) {
	f := panmari.NewFilter(benchItems)
	b.ResetTimer()
	for i := range b.N {
		f.Insert(testKeys[i%benchItems])
	}
}

func BenchmarkInsertSequential_Bloom(b *testing.B) {
	f := bloom.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}

// ============================================================================
// Contains Benchmarks (half hits, half misses)
// ============================================================================

func BenchmarkContains_Bamboo(b *testing.B) {
	f := bamboo.New(benchItems)
	for i := 0; i < benchItems; i += 2 {
		_ = f.Insert(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		_ = f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkContains_SeiflotfyCuckoo(b *testing.B) {
	f := seiflotfy.NewFilter(benchItems)
	for i := 0; i < benchItems; i += 2 {
		f.Insert(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		_ = f.Lookup(testKeys[i%benchItems])
	}
}

func BenchmarkContains_PanmariCuckoo(b *testing.B) {
	f := panmari.NewFilter(benchItems)
	for i := 0; i < benchItems; i += 2 {
		f.Insert(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		_ = f.Lookup(testKeys[i%benchItems])
	}
}

func BenchmarkContains_Bloom(b *testing.B) {
	f := bloom.NewWithEstimates(benchItems, benchFPRate)
	for i := 0; i < benchItems; i += 2 {
		f.Add(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		_ = f.Test(testKeys[i%benchItems])
	}
}

// ============================================================================
// Growth Benchmarks
// ============================================================================

// BenchmarkGrowthFromSmall_Bamboo starts from a deliberately tiny table so
// the run is dominated by segment migrations - the cost the smooth
// expansion design spreads across inserts.
func BenchmarkGrowthFromSmall_Bamboo(b *testing.B) {
	cfg := bamboo.DefaultConfig()
	cfg.InitialBuckets = 64
	cfg.SegmentSize = 64
	cfg.Seed = 1
	f, err := bamboo.NewWithConfig(cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		_ = f.Insert(testKeys[i%benchItems])
	}
}

// BenchmarkGrowthFromSmall_Bloom is the fixed-size baseline: the bloom
// filter cannot grow, so it is pre-sized and simply degrades in accuracy.
func BenchmarkGrowthFromSmall_Bloom(b *testing.B) {
	f := bloom.NewWithEstimates(1024, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(testKeys[i%benchItems])
	}
}
