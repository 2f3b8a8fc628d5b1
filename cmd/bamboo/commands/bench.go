// Package commands implements CLI command handlers for bamboo.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	bamboo "github.com/v-brkic/Bamboo-filter"
	"github.com/v-brkic/Bamboo-filter/genome"
)

// BenchCommand holds configuration for the bench command. The first five
// flags map one-to-one to the filter's construction parameters.
type BenchCommand struct {
	capacity    uint64
	bucketSize  int
	loadFactor  float64
	maxIter     int
	segmentSize uint64
	seed        int64

	genomePath  string
	randomBases int
	kmer        int
	inserts     int
	queries     int
	noColor     bool
}

// NewBenchCommand creates the bench cobra command.
func NewBenchCommand() *cobra.Command {
	cmd, _ := newBenchCommand()
	return cmd
}

func newBenchCommand() (*cobra.Command, *BenchCommand) {
	bc := &BenchCommand{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark insert and query throughput on sampled k-mers",
		Long: `Bench constructs a filter, samples random k-mers from a genome
(or from a generated random sequence), inserts them, then measures query
time and accuracy for both inserted and fresh keys.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bc.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().Uint64Var(&bc.capacity, "capacity", bamboo.DefaultInitialBuckets, "initial bucket count (rounded up to a power of two)")
	cmd.Flags().IntVar(&bc.bucketSize, "bucketSize", bamboo.DefaultSlotsPerBucket, "slots per bucket")
	cmd.Flags().Float64Var(&bc.loadFactor, "loadFactor", bamboo.DefaultLoadFactor, "load factor threshold that triggers expansion")
	cmd.Flags().IntVar(&bc.maxIter, "maxIter", bamboo.DefaultMaxEvictions, "maximum cuckoo eviction chain length")
	cmd.Flags().Uint64Var(&bc.segmentSize, "segmentSize", bamboo.DefaultSegmentSize, "old buckets drained per insert during migration")
	cmd.Flags().Int64Var(&bc.seed, "seed", 1, "seed for sampling and eviction randomness")
	cmd.Flags().StringVar(&bc.genomePath, "genome", "", "genome file to sample from (FASTA or plain text)")
	cmd.Flags().IntVar(&bc.randomBases, "randomBases", 1<<20, "length of the generated sequence when no genome file is given")
	cmd.Flags().IntVar(&bc.kmer, "kmer", 31, "k-mer length")
	cmd.Flags().IntVar(&bc.inserts, "inserts", 100_000, "number of k-mers to sample and insert")
	cmd.Flags().IntVar(&bc.queries, "queries", 100_000, "number of fresh random k-mers to query")
	cmd.Flags().BoolVar(&bc.noColor, "noColor", false, "disable colored output")

	return cmd, bc
}

// filterConfig translates the command flags into a filter Config.
func (bc *BenchCommand) filterConfig() bamboo.Config {
	return bamboo.Config{
		InitialBuckets:      bc.capacity,
		SlotsPerBucket:      bc.bucketSize,
		LoadFactorThreshold: bc.loadFactor,
		MaxEvictions:        bc.maxIter,
		SegmentSize:         bc.segmentSize,
		Seed:                bc.seed,
	}
}

func (bc *BenchCommand) run(w io.Writer) error {
	if bc.noColor {
		color.NoColor = true
	}

	f, err := bamboo.NewWithConfig(bc.filterConfig())
	if err != nil {
		return err
	}

	seq, err := bc.loadSequence()
	if err != nil {
		return err
	}

	sampler, err := genome.NewSampler(seq, bc.kmer, bc.seed)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	heading.Fprintf(w, "bamboo bench: %s bases, %s k-mers of length %d\n",
		humanize.Comma(int64(len(seq))), humanize.Comma(int64(bc.inserts)), bc.kmer)

	// Insert phase. Expansions are observed through capacity changes.
	keys := make([][]byte, bc.inserts)
	for i := range keys {
		keys[i] = sampler.Next()
	}

	var overflows, expansions int
	lastCapacity := f.Capacity()
	insertStart := time.Now()
	for _, k := range keys {
		if err := f.Insert(k); err != nil {
			overflows++
		}
		if c := f.Capacity(); c > lastCapacity {
			expansions++
			lastCapacity = c
		}
	}
	insertTime := time.Since(insertStart)

	// Positive queries: every sampled k-mer must still test positive,
	// short of overflowed inserts and migration drops.
	var misses int
	queryStart := time.Now()
	for _, k := range keys {
		if !f.Contains(k) {
			misses++
		}
	}
	queryTime := time.Since(queryStart)

	// Fresh keys: uniform random k-mers, almost surely never inserted.
	fresh := genome.Random(bc.queries+bc.kmer, bc.seed+1)
	freshSampler, err := genome.NewSampler(fresh, bc.kmer, bc.seed+2)
	if err != nil {
		return err
	}
	var positives int
	for i := 0; i < bc.queries; i++ {
		if f.Contains(freshSampler.Next()) {
			positives++
		}
	}

	bc.report(w, f, benchResult{
		insertTime: insertTime,
		queryTime:  queryTime,
		overflows:  overflows,
		expansions: expansions,
		misses:     misses,
		positives:  positives,
	})

	if overflows > 0 || f.MigrationDrops() > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(w, "warning: %d overflows, %d migration drops - consider a larger --capacity or --maxIter\n",
			overflows, f.MigrationDrops())
	}
	return nil
}

func (bc *BenchCommand) loadSequence() ([]byte, error) {
	if bc.genomePath != "" {
		return genome.Load(bc.genomePath)
	}
	return genome.Random(bc.randomBases, bc.seed), nil
}

type benchResult struct {
	insertTime time.Duration
	queryTime  time.Duration
	overflows  int
	expansions int
	misses     int
	positives  int
}

func (bc *BenchCommand) report(w io.Writer, f *bamboo.Filter, r benchResult) {
	insertNs := float64(r.insertTime.Nanoseconds()) / float64(bc.inserts)
	queryNs := float64(r.queryTime.Nanoseconds()) / float64(bc.inserts)
	fpRate := float64(r.positives) / float64(bc.queries)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"inserts attempted", humanize.Comma(int64(bc.inserts))},
		{"unique keys recorded", humanize.Comma(int64(f.Size()))},
		{"insert time", r.insertTime.Round(time.Microsecond)},
		{"insert latency", fmt.Sprintf("%.0f ns/op", insertNs)},
		{"overflows", r.overflows},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"positive query time", r.queryTime.Round(time.Microsecond)},
		{"query latency", fmt.Sprintf("%.0f ns/op", queryNs)},
		{"false negatives", r.misses},
		{"fresh-key positives", fmt.Sprintf("%d / %s", r.positives, humanize.Comma(int64(bc.queries)))},
		{"false positive rate", fmt.Sprintf("%.5f%%", fpRate*100)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"capacity (buckets)", humanize.Comma(int64(f.Capacity()))},
		{"load factor", fmt.Sprintf("%.3f", f.LoadFactor())},
		{"expansions observed", r.expansions},
		{"still expanding", f.Expanding()},
		{"migration drops", f.MigrationDrops()},
		{"memory", humanize.IBytes(f.MemoryUsage())},
	})
	t.Render()
}
