package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	EnvFile  string
	LogLevel string
}

// NewRootCommand builds the mailroom command tree
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "mailroom",
		Short: "Mailroom backend: accounts, one-time passcodes and outgoing mail settings",
		Long: `Mailroom keeps user accounts, their outgoing mail accounts and email history,
and issues one-time passcodes for email verification.`,
		Example: `mailroom serve
  mailroom migrate status
  mailroom --env-file .env.production config`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Flags override the environment that LoadConfig reads
			if flags.EnvFile != "" {
				if err := os.Setenv("ENV_FILE", flags.EnvFile); err != nil {
					return err
				}
			}
			if flags.LogLevel != "" {
				if err := os.Setenv("LOG_LEVEL", flags.LogLevel); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "Dotenv file to load before reading the environment (default: .env)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR) - overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newConfigCommand(),
		newCreateUserCommand(),
		newPurgeOTPsCommand(),
		newIssueOTPCommand(),
		newVerifyOTPCommand(),
	)

	return rootCmd
}

// Execute runs the root command with os.Args
func Execute() error {
	return NewRootCommand().Execute()
}
