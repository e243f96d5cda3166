// Package main provides the API server entry point.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wavebreaker/backend/internal/di"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Server failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Create a context that will be canceled when OS signals are received
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,    // SIGINT (Ctrl+C)
		syscall.SIGTERM, // SIGTERM (k8s termination signal)
		syscall.SIGQUIT, // SIGQUIT
	)
	defer stop()

	log.Println("Starting server...")

	app, err := di.InitializeApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Shutdown(context.Background()); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}()

	legacyErr, adminErr, healthErr, routerErr := app.Start(ctx)

	select {
	case <-ctx.Done():
		log.Println("Received shutdown signal, stopping server gracefully...")
		return nil
	case err := <-legacyErr:
		log.Printf("legacy server failed: %v", err)
		return err
	case err := <-adminErr:
		log.Printf("admin server failed: %v", err)
		return err
	case err := <-healthErr:
		log.Printf("health server failed: %v", err)
		return err
	case err := <-routerErr:
		log.Printf("enrichment router failed: %v", err)
		return err
	}
}
