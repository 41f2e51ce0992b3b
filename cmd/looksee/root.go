package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/looksee/internal/config"
	"github.com/kingrea/looksee/internal/logging"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("204"))
)

// ExitError carries a process exit code through cobra. The message has
// already been reported when it is returned.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "looksee",
		Short: "Discover exported objects in Go source trees",
		Long: titleStyle.Render("looksee") + subtitleStyle.Render(" - discover exported objects in Go source trees") + `

looksee resolves a dotted package path against its search roots, walks the
package tree, interprets each source file and hands every exported name that
matches the filters to a registry.

` + subtitleStyle.Render("Examples:") + `
  looksee scan plugins                 Scan ./plugins and every sub-package
  looksee scan plugins.auth --kind var Only report package-level variables
  looksee scan plugins --format json   Machine-readable output
  looksee init                         Write a default looksee.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("project", ".", "project directory holding looksee.yaml")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("project", root.PersistentFlags().Lookup("project"))
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	// LOOKSEE_PATH is a path list handled by the config package, so only
	// scalar settings are taken from the environment here.
	for key, env := range map[string]string{
		"log-level": logging.EnvLevel,
		"format":    "LOOKSEE_FORMAT",
		"strict":    "LOOKSEE_STRICT",
	} {
		_ = v.BindEnv(key, env)
	}

	root.AddCommand(newScanCmd(v))
	root.AddCommand(newInitCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

func newInitCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default looksee.yaml into the project directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.InitProject(v.GetString("project"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the looksee version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "looksee %s (commit: %s)\n", Version, Commit)
		},
	}
}
