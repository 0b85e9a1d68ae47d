package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alovak/checkout-playground/checkout"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout))

	config := checkout.DefaultConfig()
	config.HTTPAddr = getenv("CHECKOUT_HTTP_ADDR", config.HTTPAddr)
	config.GatewayBaseURL = getenv("GATEWAY_BASE_URL", config.GatewayBaseURL)
	config.PublicKey = os.Getenv("CHECKOUT_PUBLIC_KEY")
	config.SecretKey = os.Getenv("CHECKOUT_SECRET_KEY")
	config.CallbackBaseURL = getenv("CALLBACK_BASE_URL", config.CallbackBaseURL)
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid GATEWAY_TIMEOUT", "err", err)
			os.Exit(1)
		}
		config.GatewayTimeout = d
	}

	if config.PublicKey == "" || config.SecretKey == "" {
		logger.Error("CHECKOUT_PUBLIC_KEY and CHECKOUT_SECRET_KEY must be set")
		os.Exit(1)
	}

	app := checkout.NewApp(logger, config)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
