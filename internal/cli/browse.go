package cli

import (
	"fmt"
	"strings"

	"github.com/setlog/setlog/internal/app"
	"github.com/setlog/setlog/internal/exercises"
	"github.com/setlog/setlog/internal/tutorials"

	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show training stats and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.Dashboard.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total volume:    %.1f kg\n", stats.TotalVolume)
			fmt.Fprintf(out, "total workouts:  %d\n", stats.TotalWorkouts)
			fmt.Fprintf(out, "calories burned: %d\n", stats.TotalCaloriesBurned)
			fmt.Fprintf(out, "active streak:   %d days\n", stats.ActiveStreak)

			overview, err := a.Dashboard.Overview(cmd.Context())
			if err != nil {
				return err
			}
			if len(overview.RecentSessions) > 0 {
				fmt.Fprintln(out, "\nrecent sessions:")
				for _, s := range overview.RecentSessions {
					name := s.ProgramName
					if name == "" {
						name = "Free Session"
					}
					fmt.Fprintf(out, "  %s  %s  %.0f kg\n", s.StartTime, name, s.TotalVolume)
				}
			}

			points, err := a.Dashboard.Progress(cmd.Context())
			if err != nil {
				return err
			}
			if len(points) > 0 {
				fmt.Fprintln(out, "\nweekly volume:")
				for _, p := range points {
					fmt.Fprintf(out, "  %s  %.0f kg\n", p.Period, p.TotalVolume)
				}
			}
			return nil
		},
	}

	var search string
	programs := &cobra.Command{
		Use:   "programs",
		Short: "List workout programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.Dashboard.Programs(cmd.Context(), search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no programs found")
				return nil
			}
			for _, p := range list {
				duration := p.Duration
				if duration == "" {
					duration = "no duration"
				}
				fmt.Fprintf(out, "%s  %s (%s)\n", p.ID, p.Name, duration)
			}
			return nil
		},
	}
	programs.Flags().StringVar(&search, "search", "", "filter programs by name")

	cmd.AddCommand(programs)
	return cmd
}

func newExercisesCmd(a *app.App) *cobra.Command {
	var search, muscle string

	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Browse the exercise catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.Exercises.List(cmd.Context(), exercises.Filter{
				Search:      search,
				MuscleGroup: muscle,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no exercises found")
				return nil
			}
			for _, ex := range list {
				fmt.Fprintf(out, "%s  %s [%s, %s]\n", ex.ID, ex.Name, ex.MuscleGroups, ex.DifficultyLevel)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name")
	cmd.Flags().StringVar(&muscle, "muscle", exercises.MuscleGroupAll,
		"filter by muscle group: "+strings.Join(exercises.MuscleGroups, ", "))
	return cmd
}

func newTutorialsCmd(a *app.App) *cobra.Command {
	var search, category string

	cmd := &cobra.Command{
		Use:   "tutorials",
		Short: "Browse the tutorial library",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.Tutorials.List(cmd.Context(), tutorials.Filter{
				Search:   search,
				Category: category,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no tutorials found")
				return nil
			}
			for _, tut := range list {
				fmt.Fprintf(out, "%s (%s, %s)\n", tut.Title, tut.Type, tut.Difficulty)
				if url := tut.VideoURL; url != "" {
					fmt.Fprintf(out, "  %s\n", url)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by title")
	cmd.Flags().StringVar(&category, "category", tutorials.CategoryAll,
		"filter by category: "+strings.Join(tutorials.Categories, ", "))
	return cmd
}

func newCoachCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "coach <question>",
		Short: "Ask the AI fitness coach",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := a.Coach.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}
}
