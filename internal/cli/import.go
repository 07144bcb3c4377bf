package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quizverse/internal/config"
	"quizverse/internal/domain"
	"quizverse/internal/importer"
	"quizverse/internal/logger"
)

// NewImportCmd loads a quiz from an .xlsx sheet into the content store.
func NewImportCmd(configPath *string) *cobra.Command {
	cfg := importer.DefaultImportConfig()
	var meta importer.QuizMeta

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import quiz questions from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			appCfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(appCfg.Log.Level, appCfg.Log.Format)

			st, err := buildStack(ctx, appCfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			cfg.FilePath = args[0]
			result, err := importer.ImportQuiz(ctx, st.content, cfg, meta)
			if result != nil {
				for _, msg := range result.Errors {
					log.Warn().Str("file", cfg.FilePath).Msg(msg)
				}
			}
			if err != nil {
				return err
			}
			if err := st.quizzes.Invalidate(ctx, result.QuizID); err != nil {
				log.Warn().Err(err).Str("quiz_id", result.QuizID).Msg("cache invalidation failed")
			}

			log.Info().
				Str("quiz_id", result.QuizID).
				Int("processed", result.TotalProcessed).
				Int("imported", result.Imported).
				Int("skipped", result.Skipped).
				Msg("import finished")
			fmt.Fprintln(cmd.OutOrStdout(), result.QuizID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "sheet to read")
	flags.IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first data row (1-based)")
	flags.StringVar(&meta.ID, "id", "", "quiz id (generated when empty)")
	flags.StringVar(&meta.Title, "title", "", "quiz title")
	flags.StringVar(&meta.CategoryID, "category", "", "category id")
	flags.StringVar(&meta.SubcategoryID, "subcategory", "", "subcategory id")
	flags.StringVar(&meta.Difficulty, "difficulty", domain.DifficultyEasy, "Easy, Medium or Hard")
	flags.IntVar(&meta.DurationMinutes, "minutes", 10, "time limit in minutes")
	flags.BoolVar(&meta.RequireSignup, "require-signup", false, "only signed-in verified users may attempt")
	flags.BoolVar(&meta.Published, "publish", true, "show the quiz in the catalog")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
