package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	courier "github.com/omidportfolio/contact-courier/internal"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contact-courier",
		Short:         "Relay portfolio contact-form submissions by email",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  runServe,
		},
		newSendTestCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, err := courier.LoadConfig()
	if err != nil {
		return err
	}
	logger, logCloser := courier.NewLogger(config.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, closeLimiter, err := courier.NewLimiter(ctx, config.Rate, logger)
	if err != nil {
		logger.Error("rate limiter setup failed", "err", err)
		return err
	}
	defer func() {
		if err := closeLimiter(); err != nil {
			logger.Warn("failed to close rate limit store", "err", err)
		}
	}()

	mailer, err := courier.NewMailer(config.Mail, courier.NewSMTPTransport(config.Mail.SMTP))
	if err != nil {
		logger.Error("mailer setup failed", "err", err)
		return err
	}
	if config.Mail.SMTP.User == "" || config.Mail.SMTP.Pass == "" {
		logger.Warn("CONTACT_SMTP_USER / CONTACT_SMTP_PASS not set, every submission will fail")
	}

	s := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           courier.NewRouter(logger, courier.NewHandler(config, limiter, mailer)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      config.Mail.SendTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("contact-courier listening", "addr", config.ListenAddr, "to", config.Mail.Recipient())
		errCh <- s.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "err", err)
		return err
	}
	return nil
}

func newSendTestCmd() *cobra.Command {
	var p courier.ContactRequest
	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a sample notification to check the SMTP settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := courier.LoadConfig()
			if err != nil {
				return err
			}
			logger, logCloser := courier.NewLogger(config.Log)
			defer logCloser.Close()

			p, err = courier.ValidateContact(p, courier.LangEnglish)
			if err != nil {
				return err
			}
			mailer, err := courier.NewMailer(config.Mail, courier.NewSMTPTransport(config.Mail.SMTP))
			if err != nil {
				return err
			}
			meta := courier.Meta{IP: "127.0.0.1", UserAgent: "contact-courier send-test", Received: time.Now()}
			if err := mailer.Send(cmd.Context(), p, meta); err != nil {
				logger.Error("test send failed", "err", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent test notification to %s\n", config.Mail.Recipient())
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "Contact Courier", "sender name")
	cmd.Flags().StringVar(&p.Email, "email", "noreply@example.com", "sender email (used as Reply-To)")
	cmd.Flags().StringVar(&p.Message, "message", "This is a test message from contact-courier.", "message body")
	return cmd
}
