package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPurgeOTPsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-otps",
		Short: "Delete expired one-time passcodes once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			purged, err := a.otps.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired OTP(s)\n", purged)
			return nil
		},
	}
}

func newIssueOTPCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "issue-otp",
		Short: "Issue a one-time passcode for an email address",
		Long: `Issue a fresh one-time passcode, replacing any outstanding one for the address.
Requests are throttled per address to OTP_MAX_REQUESTS_PER_HOUR when REDIS_URL is set.`,
		Example: `mailroom issue-otp --email ada@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			code, err := a.otps.Issue(cmd.Context(), email)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OTP for %s: %s (valid for %s)\n", email, code, a.cfg.OTPTTL())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newVerifyOTPCommand() *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:     "verify-otp",
		Short:   "Verify and consume a one-time passcode",
		Example: `mailroom verify-otp --email ada@example.com --code 123456`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.otps.Verify(cmd.Context(), email, code); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OTP for %s verified\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&code, "code", "", "Passcode to check (required)")
	for _, name := range []string{"email", "code"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
