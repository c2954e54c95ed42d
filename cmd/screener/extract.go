package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type extractOutput struct {
	File    string                   `json:"file"`
	Profile *models.CandidateProfile `json:"profile,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <files...>",
	Short: "Extract name, contacts, experience and skills from resumes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		outputs := make([]extractOutput, 0, len(args))
		for _, path := range args {
			out := extractOutput{File: filepath.Base(path)}

			text, err := p.Extractor.ExtractText(cmd.Context(), path, services.ExtractOptions{})
			if err != nil {
				out.Error = err.Error()
			} else {
				profile := p.Profiles.Extract(text)
				out.Profile = &profile
			}
			outputs = append(outputs, out)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
