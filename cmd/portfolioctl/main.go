package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/version"
)

var logger *logging.Logger

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI output goes to the terminal only
	logger = logging.New(os.Stderr, cfg.Log.Level)
	return cfg
}

func withSpinner(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	err := fn()
	s.Stop()
	return err
}

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Operator tools for the portfolio contact relay",
	Long: `portfolioctl checks the configuration the portfolio server runs with:
it can send a test email through the SMTP relay and check challenge tokens
against the configured attestation provider.`,
}

var sendTestCmd = &cobra.Command{
	Use:   "send-test",
	Short: "Send a test email through the configured SMTP relay",
	Long: `Send one email to the operator mailbox using the same composition and
transport as the /contact endpoint. No challenge token is checked.

Example:
  portfolioctl send-test
  portfolioctl send-test --name "Smoke Test" --message "ping"`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		name, _ := cmd.Flags().GetString("name")
		message, _ := cmd.Flags().GetString("message")

		mailer := service.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Address, cfg.Mail.Password, cfg.Mail.Timeout)
		msg := service.ComposeContactMessage(cfg.Mail.Address, service.Submission{
			Name:    name,
			Email:   cfg.Mail.Address,
			Message: message,
		})

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mail.Timeout)
		defer cancel()

		err := withSpinner(fmt.Sprintf("Sending test email via %s:%d...", cfg.Mail.Host, cfg.Mail.Port), func() error {
			return mailer.Send(ctx, msg)
		})
		if err != nil {
			logger.Error("Failed to send test email: %v", err)
			os.Exit(1)
		}

		fmt.Printf("✅ Test email sent to %s\n", cfg.Mail.Address)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Check a challenge token with the configured attestation provider",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		verifier, err := service.NewVerifier(cfg.Captcha)
		if err != nil {
			logger.Error("Failed to create verifier: %v", err)
			os.Exit(1)
		}

		remoteIP, _ := cmd.Flags().GetString("remote-ip")

		var result service.VerificationResult
		_ = withSpinner(fmt.Sprintf("Verifying token with %s...", verifier.Name()), func() error {
			result = verifier.Verify(context.Background(), args[0], remoteIP)
			return nil
		})

		if !result.Success {
			fmt.Printf("❌ %s rejected the token: %v\n", verifier.Name(), result.ErrorCodes)
			os.Exit(1)
		}

		fmt.Printf("✅ %s accepted the token", verifier.Name())
		if result.Hostname != "" {
			fmt.Printf(" (hostname %s)", result.Hostname)
		}
		fmt.Println()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	sendTestCmd.Flags().String("name", "portfolioctl", "Sender name used in the subject")
	sendTestCmd.Flags().String("message", "This is a test message from portfolioctl.", "Message body")
	verifyCmd.Flags().String("remote-ip", "", "Client IP to forward to the provider")

	rootCmd.AddCommand(sendTestCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
