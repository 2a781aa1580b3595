package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/webshot/internal/app"
	"github.com/raysh454/webshot/internal/cli"
	"github.com/raysh454/webshot/internal/config"
	"github.com/raysh454/webshot/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cliArgs, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webshot: %v\n", err)
		return 2
	}
	if cliArgs.ShowHelp {
		fmt.Print(cli.Usage())
		return 0
	}
	if cliArgs.ShowVersion {
		fmt.Println("webshot", cli.Version)
		return 0
	}

	settings, err := config.Load(cliArgs.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webshot: %v\n", err)
		return 1
	}

	// Flags override the environment.
	if cliArgs.Addr != "" {
		settings.HTTPAddr = cliArgs.Addr
	}
	if cliArgs.StorageDir != "" {
		settings.StorageDirectory = config.ExpandPath(cliArgs.StorageDir)
	}
	if cliArgs.Driver != "" {
		settings.Driver = cliArgs.Driver
	}

	logger := logging.NewStdoutLoggerAt("Webshot", logging.ParseLevel(settings.LogLevel))

	application, err := app.NewApplication(context.Background(), settings, cliArgs, logger)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		return 1
	}

	errCh := make(chan error, 1)
	go func() { errCh <- application.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
			return 1
		}
	case sig := <-quit:
		logger.Info("signal received, shutting down", logging.Field{Key: "signal", Value: sig.String()})
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown failed", logging.Field{Key: "error", Value: err.Error()})
			return 1
		}
		<-errCh
	}

	return 0
}
