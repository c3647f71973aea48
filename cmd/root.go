package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"moviebook-cli/tui"
)

var (
	configPath string
	current    *app

	buildVersion = "dev"
	buildCommit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of moviebook",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(versionString())
	},
}

var rootCmd = &cobra.Command{
	Use:   "moviebook",
	Short: "Book movie tickets from the terminal",
	Long: `Browse movies and showtimes, pick seats on the map and book them,
all from the terminal. Run without a command to open the interactive app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		a, err := newApp(cmd.Context(), configPath, buildVersion)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		model := tui.New(tui.Deps{
			Context:  cmd.Context(),
			Catalog:  current.catalog,
			Accounts: current.accounts,
			Backend:  current.client,
			Session:  current.session,
			Columns:  current.cfg.Seating.Columns,
			Logger:   current.logger.Named("tui"),
		})
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/moviebook-cli/config.yaml)")
	rootCmd.AddCommand(
		versionCmd,
		cinemasCmd,
		moviesCmd,
		showtimesCmd,
		seatsCmd,
		bookCmd,
		bookingsCmd,
		loginCmd,
		registerCmd,
		logoutCmd,
		profileCmd,
		adminCmd,
	)
}

func versionString() string {
	out := "moviebook " + buildVersion
	if buildCommit != "none" && buildCommit != "" {
		out += fmt.Sprintf(" (%s)", buildCommit)
	}
	return out
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version, commit string) {
	buildVersion = version
	buildCommit = commit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
