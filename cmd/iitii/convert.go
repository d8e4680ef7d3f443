package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/iitii/internal/store"
	"github.com/inodb/iitii/internal/variants"
)

const insertBatchSize = 10000

func newConvertCmd() *cobra.Command {
	var chrom string

	cmd := &cobra.Command{
		Use:   "convert <input.vcf> <output.duckdb>",
		Short: "Convert a VCF file to a DuckDB variant store",
		Long: `Parse a VCF file once and persist its variant intervals in a DuckDB
database, so repeated benchmark runs skip the parse.`,
		Example: `  iitii convert gnomad.chr2.vcf.bgz gnomad.chr2.duckdb
  iitii convert --chrom 2 all_sites.vcf.gz chr2.duckdb`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], chrom)
		},
	}

	cmd.Flags().StringVar(&chrom, "chrom", "", "Only convert variants from this chromosome")

	return cmd
}

func runConvert(inputPath, outputPath, chrom string) error {
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath += ".duckdb"
	}

	p, err := variants.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer p.Close()

	s, err := store.Open(outputPath)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("converting variants",
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	batch := make([]variants.Variant, 0, insertBatchSize)
	total := 0
	for {
		v, err := p.Next()
		if err != nil {
			return fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}
		if chrom != "" && v.Chrom != chrom {
			continue
		}

		batch = append(batch, *v)
		if len(batch) == insertBatchSize {
			if err := s.InsertVariants(batch); err != nil {
				return err
			}
			total += len(batch)
			batch = batch[:0]
			logger.Info("inserted variants", zap.String("total", humanize.Comma(int64(total))))
		}
	}
	if len(batch) > 0 {
		if err := s.InsertVariants(batch); err != nil {
			return err
		}
		total += len(batch)
	}

	count, err := s.Count()
	if err != nil {
		return fmt.Errorf("verify count: %w", err)
	}
	if count != total {
		return fmt.Errorf("store holds %d variants, expected %d", count, total)
	}

	logger.Info("conversion complete",
		zap.String("variants", humanize.Comma(int64(total))),
		zap.String("output", outputPath))
	return nil
}
