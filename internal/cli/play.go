package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quizverse/internal/app"
	"quizverse/internal/config"
	"quizverse/internal/domain"
	"quizverse/internal/logger"
)

const playHelp = "commands: 1-4 or a-d answer, n next, p prev, g N jump, m mark, s submit, q quit"

// NewPlayCmd plays a quiz in the terminal against the configured storage.
func NewPlayCmd(configPath *string) *cobra.Command {
	var anonymous bool
	cmd := &cobra.Command{
		Use:   "play [quiz-id]",
		Short: "Play a quiz in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			// Keep log lines out of the quiz screen.
			log := logger.New(cmd.ErrOrStderr(), "warn", cfg.Log.Format)

			st, err := buildStack(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			player := app.NewPlayerService(st.attempts, st.quizzes, log)
			who := domain.Identity{SignedIn: true, EmailVerified: true, Email: "player@localhost"}
			if anonymous {
				who = domain.Anonymous
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return printCatalog(ctx, out, player, who)
			}

			view, err := player.Start(ctx, args[0], who)
			if err != nil {
				return err
			}
			_, err = playLoop(ctx, player, view.AttemptID, os.Stdin, out, term.IsTerminal(int(os.Stdin.Fd())))
			return err
		},
	}
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "play without a signed-in identity")
	return cmd
}

func printCatalog(ctx context.Context, out io.Writer, player *app.PlayerService, who domain.Identity) error {
	quizzes, err := player.Catalog(ctx, who, app.CatalogFilter{})
	if err != nil {
		return err
	}
	for _, q := range quizzes {
		lock := ""
		if q.Locked {
			lock = "  (sign-in required)"
		}
		fmt.Fprintf(out, "%-12s %-32s %-6s %2d questions %3d min%s\n",
			q.ID, q.Title, q.Difficulty, q.QuestionCount, q.DurationMinutes, lock)
	}
	return nil
}

// playLoop reads commands from in until the attempt is submitted, times out
// or the player quits. It returns the result and whether one was produced.
func playLoop(ctx context.Context, player *app.PlayerService, attemptID string, in io.Reader, out io.Writer, interactive bool) (*domain.Result, error) {
	updates, cancel, err := player.Subscribe(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	prompt := func() {
		if interactive {
			fmt.Fprint(out, "> ")
		}
	}

	view, err := player.View(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out, playHelp)
	renderView(out, view)
	prompt()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case v, ok := <-updates:
			if !ok {
				return nil, nil
			}
			if v.Status == domain.AttemptSubmitted && v.Result != nil {
				fmt.Fprintln(out, "\ntime is up")
				renderResult(out, *v.Result)
				return v.Result, nil
			}

		case line, ok := <-lines:
			if !ok {
				line = "q"
			}
			result, quit, err := runCommand(ctx, player, attemptID, strings.TrimSpace(line), out)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if result != nil {
				renderResult(out, *result)
				return result, nil
			}
			if quit {
				return nil, player.Exit(ctx, attemptID)
			}
			if err == nil {
				if view, err := player.View(ctx, attemptID); err == nil {
					renderView(out, view)
				}
			}
			prompt()
		}
	}
}

func runCommand(ctx context.Context, player *app.PlayerService, attemptID, line string, out io.Writer) (*domain.Result, bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch cmd := fields[0]; cmd {
	case "1", "2", "3", "4", "a", "b", "c", "d":
		option := optionIndex(cmd)
		view, err := player.View(ctx, attemptID)
		if err != nil {
			return nil, false, err
		}
		_, err = player.SelectAnswer(ctx, attemptID, view.Question.ID, option)
		return nil, false, err
	case "n":
		_, err := player.Next(ctx, attemptID)
		return nil, false, err
	case "p":
		_, err := player.Prev(ctx, attemptID)
		return nil, false, err
	case "g":
		if len(fields) != 2 {
			return nil, false, fmt.Errorf("usage: g N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false, fmt.Errorf("usage: g N")
		}
		_, err = player.GoTo(ctx, attemptID, n-1)
		return nil, false, err
	case "m":
		view, err := player.View(ctx, attemptID)
		if err != nil {
			return nil, false, err
		}
		_, err = player.ToggleMark(ctx, attemptID, view.Question.ID)
		return nil, false, err
	case "s":
		result, err := player.Submit(ctx, attemptID)
		if err != nil {
			return nil, false, err
		}
		return &result, false, nil
	case "q":
		return nil, true, nil
	case "h", "?":
		fmt.Fprintln(out, playHelp)
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("unknown command %q", line)
	}
}

func optionIndex(cmd string) int {
	if cmd[0] >= 'a' && cmd[0] <= 'd' {
		return int(cmd[0] - 'a')
	}
	return int(cmd[0] - '1')
}

func renderView(out io.Writer, v domain.AttemptView) {
	fmt.Fprintf(out, "\n%s  [%s]  question %d/%d  answered %d  marked %d\n",
		v.Title, v.Remaining, v.Index+1, v.Total, v.AnsweredCount, v.MarkedCount)
	flag := ""
	if v.Marked {
		flag = " (marked)"
	}
	fmt.Fprintf(out, "%s%s\n", v.Question.Text, flag)
	for i, opt := range v.Question.Options {
		sel := " "
		if v.Selected != nil && *v.Selected == i {
			sel = "*"
		}
		fmt.Fprintf(out, " %s %c) %s\n", sel, 'A'+i, opt)
	}

	var nav strings.Builder
	for _, s := range v.Navigator {
		switch s.Style {
		case domain.NavCurrent:
			fmt.Fprintf(&nav, "[%d]", s.Index+1)
		case domain.NavMarked:
			fmt.Fprintf(&nav, " %d?", s.Index+1)
		case domain.NavAnswered:
			fmt.Fprintf(&nav, " %d+", s.Index+1)
		default:
			fmt.Fprintf(&nav, " %d ", s.Index+1)
		}
	}
	fmt.Fprintln(out, nav.String())
}

func renderResult(out io.Writer, r domain.Result) {
	fmt.Fprintf(out, "\nScore: %d%%  correct %d/%d  attempted %d  marked %d\n",
		r.ScorePercent, r.CorrectCount, r.TotalCount, r.AttemptedCount, r.MarkedCount)
}
