// Standalone dev server: wires the coordinator to a real Cognito user pool
// and SNS when configured, with in-memory fallbacks for everything else.
//
//	OTPKIT_LISTEN_ADDR      listen address (default :8080)
//	OTPKIT_PHONE_AUTH_MODE  temp_credential | custom_challenge
//	OTPKIT_VERIFY_TYPE      email | phone_number | both
//	AWS_REGION              AWS region (required)
//	USER_POOL_ID            Cognito user pool id (required)
//	USER_POOL_CLIENT_ID     Cognito app client id (required)
//	REDIS_URL               optional; memory ephemeral store without it
//	SNS_DISABLED            "true" logs codes to stdout instead of sending
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	authhttp "github.com/open-rails/otpkit/adapters/http"
	"github.com/open-rails/otpkit/core"
	"github.com/open-rails/otpkit/directory/cognito"
	snssms "github.com/open-rails/otpkit/sms/sns"
)

type config struct {
	ListenAddr    string
	PhoneAuthMode string
	VerifyType    string
	Region        string
	UserPoolID    string
	ClientID      string
	RedisURL      string
	SNSDisabled   bool
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	if err := run(cfg); err != nil {
		fatal(err)
	}
}

func loadConfig() (*config, error) {
	c := &config{
		ListenAddr:    envOr("OTPKIT_LISTEN_ADDR", ":8080"),
		PhoneAuthMode: envOr("OTPKIT_PHONE_AUTH_MODE", string(core.PhoneAuthTempCredential)),
		VerifyType:    envOr("OTPKIT_VERIFY_TYPE", string(core.VerifyPhone)),
		Region:        strings.TrimSpace(os.Getenv("AWS_REGION")),
		UserPoolID:    strings.TrimSpace(os.Getenv("USER_POOL_ID")),
		ClientID:      strings.TrimSpace(os.Getenv("USER_POOL_CLIENT_ID")),
		RedisURL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
		SNSDisabled:   strings.EqualFold(os.Getenv("SNS_DISABLED"), "true"),
	}
	if c.Region == "" {
		return nil, fmt.Errorf("AWS_REGION is required")
	}
	if c.UserPoolID == "" || c.ClientID == "" {
		return nil, fmt.Errorf("USER_POOL_ID and USER_POOL_CLIENT_ID are required")
	}
	return c, nil
}

func run(cfg *config) error {
	ctx := context.Background()

	dir, err := cognito.New(ctx, cognito.Config{
		Region:     cfg.Region,
		UserPoolID: cfg.UserPoolID,
		ClientID:   cfg.ClientID,
	})
	if err != nil {
		return fmt.Errorf("cognito: %w", err)
	}

	svc := authhttp.NewService(core.Config{
		PhoneAuthMode:    core.PhoneAuthMode(cfg.PhoneAuthMode),
		VerificationType: core.VerificationType(cfg.VerifyType),
	}).
		WithDirectory(dir).
		WithChallengeDirectory(dir).
		WithRegistrar(dir)

	if !cfg.SNSDisabled {
		sender, err := snssms.New(ctx, snssms.Config{Region: cfg.Region})
		if err != nil {
			return fmt.Errorf("sns: %w", err)
		}
		svc = svc.WithSMSSender(sender)
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		svc = svc.WithRedis(redis.NewClient(opt))
	}

	mux := http.NewServeMux()
	mux.Handle("/auth/", svc.APIHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("otpkit dev server listening on %s (mode=%s verify=%s)", cfg.ListenAddr, cfg.PhoneAuthMode, cfg.VerifyType)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "otpkit:", err)
	os.Exit(1)
}
