// Package cmd provides the command-line interface for advertsim.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "advertsim",
	Short: "advertsim simulates emitters that periodically broadcast ads.",
	Long: `advertsim simulates emitters that periodically broadcast ` +
		`advertisement voicelines. It can run a scenario and check the ` +
		`content catalog a scenario refers to.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env")
		return config.LoadEnv(envFiles...)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level. Overrides the scenario and "+config.EnvLogLevel+".")
	rootCmd.PersistentFlags().Bool("console", false,
		"Write human readable logs instead of JSON.")
	rootCmd.PersistentFlags().StringSlice("env", []string{".env"},
		"Dotenv files to load before anything else.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command, level string) (zerolog.Logger, error) {
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}

	console, _ := cmd.Flags().GetBool("console")

	return logging.New(logging.Config{
		Level:   level,
		Console: console,
		Output:  cmd.ErrOrStderr(),
	})
}
