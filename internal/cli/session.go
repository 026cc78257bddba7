package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/setlog/setlog/internal/app"
	"github.com/setlog/setlog/internal/workout"

	"github.com/spf13/cobra"
)

func newSessionCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Track the active workout session",
	}
	cmd.AddCommand(
		newSessionStartCmd(a),
		newSessionStatusCmd(a),
		newSessionAddExerciseCmd(a),
		newSessionAddSetCmd(a),
		newSessionSetCmd(a),
		newSessionCompleteCmd(a),
		newSessionHistoryCmd(a),
	)
	return cmd
}

// activeSessionID resolves the current session, empty when none is active.
// The mutation pipeline turns the empty id into ErrNoActiveSession.
func activeSessionID(cmd *cobra.Command, a *app.App) string {
	session, err := a.Tracker.Latest(cmd.Context())
	if err != nil || session == nil || session.Completed() {
		return ""
	}
	return session.ID
}

func newSessionStartCmd(a *app.App) *cobra.Command {
	var programID string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new workout session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Pipeline.StartSession(cmd.Context(), programID)
			if err != nil {
				return err
			}
			if session.ProgramName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "started %s session %s\n", session.ProgramName, session.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "started free session %s\n", session.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&programID, "program", "", "program to start from, omit for a free session")
	return cmd
}

func newSessionStatusCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Tracker.Latest(cmd.Context())
			if err != nil && session == nil {
				return err
			}
			out := cmd.OutOrStdout()
			if session == nil || session.Completed() {
				fmt.Fprintln(out, "no active session")
				return nil
			}

			name := session.ProgramName
			if name == "" {
				name = "Free Session"
			}
			fmt.Fprintf(out, "%s, running for %s\n", name, session.Elapsed(time.Now()).Round(time.Second))
			for _, entry := range session.Exercises {
				fmt.Fprintf(out, "  %s (%d sets)\n", entry.Name, len(entry.Sets))
				for _, set := range entry.Sets {
					mark := " "
					if set.IsCompleted {
						mark = "x"
					}
					fmt.Fprintf(out, "    [%s] set %d: %.1f kg x %d\n", mark, set.Order, set.Weight, set.Reps)
				}
			}
			return nil
		},
	}
}

func newSessionAddExerciseCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-exercise <exercise-id>",
		Short: "Add an exercise to the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.Pipeline.AddExercise(cmd.Context(), activeSessionID(cmd, a), args[0])
			if errors.Is(err, workout.ErrNoActiveSession) {
				return fmt.Errorf("no active session, run: setlog session start")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
			return nil
		},
	}
}

func newSessionAddSetCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-set <exercise-id>",
		Short: "Add an empty set to an exercise in the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := a.Pipeline.AddSet(cmd.Context(), activeSessionID(cmd, a), args[0])
			if errors.Is(err, workout.ErrNoActiveSession) {
				return fmt.Errorf("no active session, run: setlog session start")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added set %d for %s\n", order, args[0])
			return nil
		},
	}
}

func newSessionSetCmd(a *app.App) *cobra.Command {
	var weight, reps string
	var completed bool

	cmd := &cobra.Command{
		Use:   "set <set-id>",
		Short: "Record weight and reps for a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.Pipeline.UpdateSet(cmd.Context(), args[0],
				parseNumberOrZero(cmd, "weight", weight),
				int(parseNumberOrZero(cmd, "reps", reps)),
				completed,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s updated\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&weight, "weight", "", "weight in kg")
	cmd.Flags().StringVar(&reps, "reps", "", "repetition count")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark the set as done")
	return cmd
}

func newSessionCompleteCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Finish the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.Pipeline.CompleteSession(cmd.Context(), activeSessionID(cmd, a))
			if errors.Is(err, workout.ErrNoActiveSession) {
				return fmt.Errorf("no active session to complete")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session completed")
			return nil
		},
	}
}

func newSessionHistoryCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.Tracker.History(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "no sessions yet")
				return nil
			}
			for _, s := range sessions {
				name := s.ProgramName
				if name == "" {
					name = "Free Session"
				}
				fmt.Fprintf(out, "%s  %s  %d exercises\n",
					s.StartTime.Format("2006-01-02 15:04"), name, len(s.Exercises))
			}
			return nil
		},
	}
}
