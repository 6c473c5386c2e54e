package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/internal/domain/scoring"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		ref          scoring.Reference
		candDuration int
	)

	cmd := &cobra.Command{
		Use:   "score <reference title> <candidate title>",
		Short: "Explain how a candidate title scores against a reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}
			ref.Title = args[0]
			c := &model.Candidate{Title: args[1], DurationSeconds: candDuration}
			b := newScorer(cfg).Explain(ref, c)
			fmt.Fprint(cmd.OutOrStdout(), renderBreakdown(ref, c, b))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&ref.Year, "year", 0, "Reference release year")
	f.IntVar(&ref.DurationSeconds, "duration", 0, "Reference runtime in seconds")
	f.IntVar(&candDuration, "candidate-duration", 0, "Candidate runtime in seconds")

	return cmd
}

func renderBreakdown(ref scoring.Reference, c *model.Candidate, b scoring.Breakdown) string {
	rows := [][]string{
		{"Reference", ref.Title},
		{"Candidate", c.Title},
		{"Duration ratio", formatRatio(b.DurationRatio)},
		{"Candidate year", formatYear(b.CandidateYear)},
	}
	if b.YearDiff > 0 {
		rows = append(rows, []string{"Year difference", strconv.Itoa(b.YearDiff)})
	}
	if b.Verdict == scoring.VerdictText || b.Verdict == scoring.VerdictEmptyReference {
		rows = append(rows,
			[]string{"Reference tokens", strings.Join(b.ReferenceTokens, " ")},
			[]string{"Candidate tokens", strings.Join(b.CandidateTokens, " ")},
			[]string{"Common tokens", strings.Join(b.Common, " ")},
			[]string{"Token score", strconv.FormatFloat(b.TokenScore, 'f', 4, 64)},
			[]string{"Sequence score", strconv.FormatFloat(b.SequenceScore, 'f', 4, 64)},
		)
	}
	rows = append(rows,
		[]string{"Decided by", string(b.Verdict)},
		[]string{"Score", strconv.FormatFloat(b.Score, 'f', 2, 64)},
	)
	return renderTable([]string{"Step", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}

func formatRatio(r float64) string {
	if r == 0 {
		return "unknown"
	}
	return strconv.FormatFloat(r, 'f', 3, 64)
}

func formatYear(y int) string {
	if y == 0 {
		return "none"
	}
	return strconv.Itoa(y)
}
