package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/iitii/internal/bench"
	"github.com/inodb/iitii/internal/report"
	"github.com/inodb/iitii/internal/store"
	"github.com/inodb/iitii/internal/variants"
)

func newBenchCmd() *cobra.Command {
	var (
		queries    int
		workers    int
		window     uint32
		seed       int64
		minSize    int
		domains    []uint
		chrom      string
		format     string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "bench <input>",
		Short: "Benchmark iit against iitii over a variant file",
		Long: `Build both index variants over prefixes of a variant set and drive a
mixed overlap-query workload through them, reporting build time, query
time, and visited-node cost per configuration. Input is a VCF file
(plain or gzipped, '-' for stdin) or a DuckDB store written by
'iitii convert'.`,
		Example: `  iitii bench gnomad.chr2.vcf.bgz
  iitii bench --queries 1000000 --domains 100 variants.duckdb
  iitii bench --format tsv -o results.tsv input.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := benchConfig{
				queries: viper.GetInt("bench.queries"),
				workers: workers,
				window:  window,
				seed:    seed,
				minSize: minSize,
				domains: domains,
				chrom:   chrom,
				format:  format,
				output:  outputFile,
			}
			return runBench(args[0], cfg)
		},
	}

	cmd.Flags().IntVar(&queries, "queries", 100000, "Number of queries per experiment")
	cmd.Flags().IntVar(&workers, "workers", 0, "Query worker count (0 = all CPUs)")
	cmd.Flags().Uint32Var(&window, "window", 10, "Width of the uniform random query windows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Query-generation seed")
	cmd.Flags().IntVar(&minSize, "min-variants", 100000, "Smallest variant prefix to benchmark")
	cmd.Flags().UintSliceVar(&domains, "domains", []uint{1, 10, 100, 1000, 10000}, "iitii model domain counts to sweep")
	cmd.Flags().StringVar(&chrom, "chrom", "", "Only index variants from this chromosome")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, tsv")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	viper.BindPFlag("bench.queries", cmd.Flags().Lookup("queries"))
	viper.BindPFlag("bench.domains", cmd.Flags().Lookup("domains"))

	return cmd
}

type benchConfig struct {
	queries int
	workers int
	window  uint32
	seed    int64
	minSize int
	domains []uint
	chrom   string
	format  string
	output  string
}

func runBench(inputPath string, cfg benchConfig) error {
	vs, err := loadVariants(inputPath, cfg.chrom)
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		return fmt.Errorf("no variants loaded from %s", inputPath)
	}
	logger.Info("loaded variants",
		zap.String("input", inputPath),
		zap.String("variants", humanize.Comma(int64(len(vs)))))

	runner := bench.NewRunner()
	runner.SetLogger(logger)
	runner.SetQueryCount(cfg.queries)
	runner.SetWorkers(cfg.workers)
	runner.SetWindow(cfg.window)
	runner.SetSeed(cfg.seed)
	runner.SetMinSize(cfg.minSize)
	runner.SetDomains(cfg.domains)

	results, runErr := runner.Run(vs)

	out := os.Stdout
	if cfg.output != "" {
		out, err = os.Create(cfg.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	switch cfg.format {
	case "tsv":
		tw := report.NewTSVWriter(out)
		if err := tw.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, r := range results {
			if err := tw.Write(r); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
	case "table":
		report.RenderTable(out, results)
	default:
		return fmt.Errorf("unknown output format %q", cfg.format)
	}

	return runErr
}

// loadVariants reads intervals from a VCF file or a DuckDB store,
// detected by extension.
func loadVariants(path, chrom string) ([]variants.Variant, error) {
	switch filepath.Ext(strings.ToLower(path)) {
	case ".duckdb", ".db":
		s, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.LoadVariants(chrom)
	}

	p, err := variants.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	vs, err := p.ReadAll()
	if err != nil {
		return nil, err
	}
	if chrom == "" {
		return vs, nil
	}

	filtered := vs[:0]
	for _, v := range vs {
		if v.Chrom == chrom {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}
