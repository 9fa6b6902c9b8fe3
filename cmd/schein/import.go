package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/schein/conf"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/fscourse"
	"github.com/programme-lv/schein/summary/repo"
	"github.com/programme-lv/schein/summary/srvc"
	"github.com/spf13/cobra"
)

func newImportCmd(registry *criteria.Registry) *cobra.Command {
	var courseDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the course stored in PostgreSQL with a course directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := fscourse.Read(courseDir)
			if err != nil {
				return err
			}

			pgConnStr, err := conf.GetPgConnStrFromEnv(ctx)
			if err != nil {
				return err
			}
			pool, err := pgxpool.New(ctx, pgConnStr)
			if err != nil {
				return fmt.Errorf("error creating pg pool: %w", err)
			}
			defer pool.Close()

			summarySrvc := srvc.NewSummarySrvc(repo.NewSummaryPgRepo(pool), nil, registry)
			if err := summarySrvc.ImportCourse(ctx, course.Catalog, course.Rosters, course.Criteria); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %q\n", okText("ok"), course.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&courseDir, "course", "c", "", "Course directory containing course.toml (required)")
	cmd.MarkFlagRequired("course")
	return cmd
}
