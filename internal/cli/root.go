package cli

import (
	"fmt"
	"strconv"

	"github.com/setlog/setlog/internal/app"

	"github.com/spf13/cobra"
)

// New builds the full command tree on top of an initialized App.
func New(a *app.App) *cobra.Command {
	root := &cobra.Command{
		Use:           "setlog",
		Short:         "Workout tracking from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDashboardCmd(a),
		newExercisesCmd(a),
		newTutorialsCmd(a),
		newCoachCmd(a),
		newSessionCmd(a),
		newProfileCmd(a),
		newThemeCmd(a),
		newLocaleCmd(a),
	)
	return root
}

// parseNumberOrZero coerces free-form numeric input: anything unparseable
// counts as zero, with a warning, instead of aborting the command.
func parseNumberOrZero(cmd *cobra.Command, field, input string) float64 {
	if input == "" {
		return 0
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a number, using 0 for %s\n", input, field)
		return 0
	}
	return value
}
