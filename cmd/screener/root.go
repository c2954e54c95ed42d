package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/pipeline"
)

const app = "screener"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "screener extracts candidate profiles from resumes and ranks them against a job description",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("taxonomy", "", "path to the skills taxonomy (overrides TAXONOMY_PATH)")
	rootCmd.PersistentFlags().Bool("no-ocr", false, "disable the OCR fallback for scanned PDFs")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// setup loads configuration, applies flag overrides and builds the pipeline.
func setup(cmd *cobra.Command) (*pipeline.Pipeline, *zap.Logger, error) {
	cfg := config.Load()

	if path, _ := cmd.Flags().GetString("taxonomy"); path != "" {
		cfg.Matching.TaxonomyPath = path
	}
	if noOCR, _ := cmd.Flags().GetBool("no-ocr"); noOCR {
		cfg.OCR.Enabled = false
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Debug = true
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return p, log, nil
}
