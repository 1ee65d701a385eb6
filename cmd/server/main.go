package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/happytime/posprint/internal/api"
	"github.com/happytime/posprint/internal/config"
	"github.com/happytime/posprint/internal/printer"
	"github.com/happytime/posprint/internal/settings"
	"github.com/happytime/posprint/internal/tui"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the config file")
	headless := flag.Bool("headless", false, "run without the terminal console")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store := settings.NewStore(cfg.Storage.SettingsPath)
	if err := store.Load(); err != nil {
		log.Printf("Warning: could not load settings, using defaults: %v", err)
	}

	driver, cleanup, err := buildDriver(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s driver: %v", cfg.Printer.Driver, err)
	}
	defer cleanup()

	service := printer.NewService(driver, store, printer.Timeouts{
		Scan:      cfg.Printer.ScanTimeout,
		Connect:   cfg.Printer.ConnectTimeout,
		Write:     cfg.Printer.WriteTimeout,
		CopyDelay: cfg.Printer.CopyDelay,
	})

	server := api.NewServer(service)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting API server on %s", cfg.Server.Address)
		if err := server.Run(cfg.Server.Address); err != nil {
			serverErrChan <- err
		}
	}()

	// Reconnect to the persisted printer once the API is up.
	go service.RestoreConnection(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if *headless {
		select {
		case err := <-serverErrChan:
			log.Fatalf("Server error: %v", err)
		case <-sigChan:
			log.Println("Shutting down...")
			service.Disconnect(context.Background())
		}
		return
	}

	tuiApp := tui.NewApp(service, cfg.Server.Address)
	log.SetOutput(io.MultiWriter(os.Stderr, tuiApp.LogWriter()))

	tuiDone := make(chan struct{})
	go func() {
		if err := tuiApp.Run(); err != nil {
			log.Printf("Console error: %v", err)
		}
		close(tuiDone)
	}()

	select {
	case err := <-serverErrChan:
		log.Fatalf("Server error: %v", err)
	case <-sigChan:
		tuiApp.App.Stop()
		service.Disconnect(context.Background())
	case <-tuiDone:
		service.Disconnect(context.Background())
	}
}

// buildDriver constructs the transport selected in the config. The returned
// cleanup releases driver resources on shutdown.
func buildDriver(cfg *config.Config) (printer.Driver, func(), error) {
	switch cfg.Printer.Driver {
	case config.DriverBluetooth:
		return printer.NewBluetoothDriver(cfg.Printer.Baud), func() {}, nil
	case config.DriverUSB:
		d := printer.NewUSBDriver()
		return d, func() { d.Close() }, nil
	case config.DriverSystem:
		return printer.NewSystemPrintDriver(cfg.Printer.SpoolDir, cfg.Printer.PrintCommand), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver %q", cfg.Printer.Driver)
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("POSPRINT_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "posprint.yaml"
	}
	return home + "/.posprint/config.yaml"
}
