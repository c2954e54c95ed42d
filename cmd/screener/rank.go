package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var rankCmd = &cobra.Command{
	Use:   "rank --job <job.txt> <files...>",
	Short: "Rank resumes against a job description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("job", "j", "", "file containing the job description")
	rankCmd.Flags().Float64P("required-experience", "e", 0, "required years of experience")
	rankCmd.Flags().Bool("fail-fast", false, "stop at the first resume that cannot be processed")
	rankCmd.Flags().Bool("json", false, "print the ranking as JSON")

	_ = rankCmd.MarkFlagRequired("job")
}

func runRank(cmd *cobra.Command, args []string) error {
	jobPath, _ := cmd.Flags().GetString("job")
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	asJSON, _ := cmd.Flags().GetBool("json")

	jobText, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	var required *float64
	if cmd.Flags().Changed("required-experience") {
		years, _ := cmd.Flags().GetFloat64("required-experience")
		required = &years
	}

	p, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	candidates := make([]services.CandidateInput, 0, len(args))
	for _, path := range args {
		candidates = append(candidates, services.CandidateInput{Filename: filepath.Base(path), Path: path})
	}

	bar := getProgressBar(len(candidates), "Scoring resumes")
	result, err := p.Ranker.Rank(cmd.Context(), string(jobText), required, candidates, services.RankOptions{
		SkipFailures: !failFast,
		Progress: func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		},
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printRanking(result)
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("resumes"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printRanking(result *models.RankingResult) {
	bold := color.New(color.Bold)
	bold.Printf("Job: %s\n", result.JobDescriptionExcerpt)
	fmt.Printf("Ranked %d of %d resumes\n\n", len(result.RankedCandidates), result.TotalResumes)

	for i, c := range result.RankedCandidates {
		verdict := verdictColor(c.Feedback.Verdict).Sprint(c.Feedback.Verdict)
		bold.Printf("%2d. %s", i+1, c.Filename)
		fmt.Printf("  final %.2f  semantic %.2f  %s\n", c.FinalScore, c.SemanticScore, verdict)
		if len(c.MatchedSkills) > 0 {
			fmt.Printf("    %s %s\n", color.GreenString("matched:"), strings.Join(c.MatchedSkills, ", "))
		}
		if len(c.MissingSkills) > 0 {
			fmt.Printf("    %s %s\n", color.RedString("missing:"), strings.Join(c.MissingSkills, ", "))
		}
		fmt.Printf("    %s\n", c.Feedback.Summary)
	}

	if len(result.Failures) > 0 {
		fmt.Println()
		color.Yellow("Skipped %d resumes:", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  %s (%s): %s\n", f.Filename, f.Stage, f.Error)
		}
	}
}

func verdictColor(v models.Verdict) *color.Color {
	switch v {
	case models.VerdictStrong:
		return color.New(color.FgGreen, color.Bold)
	case models.VerdictGood:
		return color.New(color.FgGreen)
	case models.VerdictAverage:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
