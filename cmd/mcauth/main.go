// mcauth logs into a Minecraft account from the command line and prints the
// resulting session. With MSA_CLIENT_ID set it runs the Microsoft
// device-code flow, polling caller-side while the user approves in a
// browser; otherwise it runs the legacy username/password flow.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-mcauth/auth"
	"github.com/jrsteele09/go-mcauth/internal/config"
	"github.com/jrsteele09/go-mcauth/mojang"
	"github.com/jrsteele09/go-mcauth/msa"
	"github.com/jrsteele09/go-mcauth/request"
)

const defaultPollInterval = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() error {
	c := config.New()
	displayAppName(c.GetAppName())

	logger := newLogger(c.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchanger, err := newExchanger(c, logger)
	if err != nil {
		return err
	}

	if c.GetMsaClientID() != "" {
		return deviceCodeLogin(ctx, c, exchanger, logger)
	}
	return legacyLogin(ctx, c, exchanger, logger)
}

func deviceCodeLogin(ctx context.Context, c config.Config, exchanger request.Exchanger, logger zerolog.Logger) error {
	service, err := msa.New(c.GetMsaClientID(), msa.WithExchanger(exchanger), msa.WithLogger(logger))
	if err != nil {
		return err
	}

	code, err := service.RequestDeviceCode(ctx)
	if err != nil {
		return err
	}
	fmt.Println(code.Message)

	// The library never polls; waiting out the user's browser approval is
	// this caller's job, honoring the advertised interval and expiry.
	interval := defaultPollInterval
	if code.Interval > 0 {
		interval = time.Duration(code.Interval) * time.Second
	}
	deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if time.Now().After(deadline) {
			return errors.New("device code expired before authorization")
		}

		err := service.Login(ctx)
		if err == nil {
			break
		}
		var statusErr *request.StatusError
		if errors.As(err, &statusErr) && statusErr.Pending() {
			if statusErr.ErrorCode == "slow_down" {
				interval += defaultPollInterval
			}
			logger.Debug().Str("code", statusErr.ErrorCode).Msg("authorization pending")
			continue
		}
		return err
	}

	printSession(service.Username(), service.AccessToken(), service.SelectedProfile() != nil)
	return nil
}

func legacyLogin(ctx context.Context, c config.Config, exchanger request.Exchanger, logger zerolog.Logger) error {
	options := []mojang.ServiceOption{mojang.WithExchanger(exchanger), mojang.WithLogger(logger)}
	if c.GetClientToken() != "" {
		options = append(options, mojang.WithClientToken(c.GetClientToken()))
	}
	service, err := mojang.New(options...)
	if err != nil {
		return err
	}

	service.SetUsername(c.GetUsername())
	if err := service.SetPassword(c.GetPassword()); err != nil {
		return err
	}
	if err := service.Login(ctx); err != nil {
		return err
	}

	printSession(service.Username(), service.AccessToken(), service.SelectedProfile() != nil)
	return nil
}

func newExchanger(c config.Config, logger zerolog.Logger) (request.Exchanger, error) {
	options := []request.ClientOption{request.WithLogger(logger)}
	if c.GetProxyURL() != "" {
		options = append(options, request.WithProxy(c.GetProxyURL()))
	}
	return request.NewClient(options...)
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parsed).With().Timestamp().Logger()
}

func printSession(username, accessToken string, linked bool) {
	fmt.Printf("Logged in as %s (profile linked: %v)\n", username, linked)
	if expiry, err := auth.TokenExpiry(accessToken); err == nil {
		fmt.Printf("Session token expires at %s\n", expiry.Format(time.RFC3339))
	}
}

func displayAppName(appName string) {
	banner := figure.NewFigure(appName, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
