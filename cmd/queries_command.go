package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/vidmatch/internal/adapters/catalog"
	"github.com/okian/vidmatch/internal/domain/model"
)

func newQueriesCommand(ctx *commandContext) *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "queries [catalog.jsonl]",
		Short: "Print the search queries generated for one catalog record",
		Long:  "Reads a catalog file, or standard input when no file is given, and prints the query fanout of the record on --line (the first record by default).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}

			var entries []catalog.Entry
			if len(args) == 1 {
				entries, err = catalog.ReadFile(args[0])
			} else {
				entries, err = catalog.Read(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			rec, err := pickRecord(entries, line)
			if err != nil {
				return err
			}

			gen := newGenerator(cfg)
			rows := make([][]string, 0, gen.Size())
			for i, q := range gen.Fanout(&rec) {
				rows = append(rows, []string{strconv.Itoa(i + 1), q.Locale, string(q.Variant), q.Text})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", rec.ID, rec.Title)
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"#", "Locale", "Variant", "Query"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Catalog line number of the record")
	return cmd
}

// pickRecord decodes the entry on line, or the first entry when line is 0.
func pickRecord(entries []catalog.Entry, line int) (model.CanonicalRecord, error) {
	for _, e := range entries {
		if line == 0 || e.Line == line {
			return catalog.Decode(e)
		}
	}
	if line == 0 {
		return model.CanonicalRecord{}, fmt.Errorf("%w: catalog is empty", model.ErrMalformedRecord)
	}
	return model.CanonicalRecord{}, fmt.Errorf("%w: no record on line %d", model.ErrMalformedRecord, line)
}
