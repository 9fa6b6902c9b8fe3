package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/fscourse"
	"github.com/programme-lv/schein/summary"
	"github.com/spf13/cobra"
)

type tutorialResult struct {
	Slot      string                        `json:"slot"`
	Summaries map[uuid.UUID]summary.Summary `json:"summaries"`
}

func newEvaluateCmd(registry *criteria.Registry) *cobra.Command {
	var courseDir string
	var slot string
	var asJSON bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate all criteria for every student of a course directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := fscourse.Read(courseDir)
			if err != nil {
				return err
			}
			builder := summary.NewBuilder(registry, summary.WithConcurrency(concurrency))

			var results []tutorialResult
			for _, roster := range course.Rosters {
				if slot != "" && roster.Tutorial.Slot != slot {
					continue
				}
				summaries, err := builder.BuildSummaryForTutorial(cmd.Context(), roster, course.Criteria, course.Catalog)
				if err != nil {
					return fmt.Errorf("tutorial %s: %w", roster.Tutorial.Slot, err)
				}
				slog.Debug("evaluated tutorial", "slot", roster.Tutorial.Slot, "students", len(summaries))
				results = append(results, tutorialResult{Slot: roster.Tutorial.Slot, Summaries: summaries})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return renderCourse(out, course, results)
		},
	}
	cmd.Flags().StringVarP(&courseDir, "course", "c", "", "Course directory containing course.toml (required)")
	cmd.Flags().StringVarP(&slot, "tutorial", "t", "", "Only evaluate the tutorial with this slot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print summaries as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "Students evaluated in parallel")
	cmd.MarkFlagRequired("course")
	return cmd
}

func renderCourse(w io.Writer, course *fscourse.Course, results []tutorialResult) error {
	if course.Name != "" {
		fmt.Fprintln(w, headStyle.Render(course.Name))
	}

	header := []any{"Tutorial", "Student", "Matr. no"}
	for _, cfg := range course.Criteria {
		header = append(header, cfg.Name)
	}
	header = append(header, "Schein")

	table := tablewriter.NewTable(w)
	table.Header(header...)

	passed, total := 0, 0
	for _, res := range results {
		for _, roster := range course.Rosters {
			if roster.Tutorial.Slot != res.Slot {
				continue
			}
			for _, student := range roster.Students {
				s := res.Summaries[student.ID]
				row := []any{res.Slot, student.FirstName + " " + student.LastName, student.MatriculationNo}
				for _, cfg := range course.Criteria {
					row = append(row, statusCell(s.Criteria[cfg.ID.String()]))
				}
				row = append(row, passedText(s.Passed))
				if err := table.Append(row...); err != nil {
					return err
				}
				total++
				if s.Passed {
					passed++
				}
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d/%d passed\n", passed, total)
	return err
}
