package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/1broseidon/maxmode/internal/config"
	"github.com/1broseidon/maxmode/internal/daemon"
	"github.com/1broseidon/maxmode/internal/hotkeys"
	"github.com/1broseidon/maxmode/internal/ipc"
	"github.com/1broseidon/maxmode/internal/platform"
)

func runDaemon(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: maxmode daemon")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: maxmode daemon")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (hotkey: %q, desktops: %v)", cfg.ToggleHotkey, cfg.Desktops)

	var level slog.LevelVar
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	host := daemon.NewHost(backend, daemon.HostConfig{
		Containers: containersFromDesktops(cfg.Desktops),
		Logger:     logger,
	})

	hotkeyHandler := hotkeys.NewHandler(backend, host)
	if hotkeyHandler != nil && cfg.ToggleHotkey != "" {
		if err := hotkeyHandler.Register(cfg.ToggleHotkey); err != nil {
			log.Fatalf("Failed to register hotkey: %v", err)
		}
		log.Printf("Toggle hotkey registered: %s", cfg.ToggleHotkey)
	}

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, host, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	reconcilerCancel := startReconciler(cfg, host, logger)
	defer func() { reconcilerCancel() }()

	// applyConfig brings the running daemon in line with a reloaded config.
	// Only called from the signal goroutine.
	applyConfig := func(prev, next *config.Config) {
		level.Set(next.SlogLevel())
		host.SetContainers(containersFromDesktops(next.Desktops))

		if hotkeyHandler != nil && next.ToggleHotkey != prev.ToggleHotkey {
			hotkeyHandler.Unregister()
			if next.ToggleHotkey != "" {
				if err := hotkeyHandler.Register(next.ToggleHotkey); err != nil {
					log.Printf("Warning: Failed to register hotkey %q: %v", next.ToggleHotkey, err)
				} else {
					log.Printf("Toggle hotkey registered: %s", next.ToggleHotkey)
				}
			}
		}
		if next.ReconcileInterval != prev.ReconcileInterval {
			reconcilerCancel()
			reconcilerCancel = startReconciler(next, host, logger)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		current := cfg
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					ipcServer.UpdateConfig(newCfg)
					applyConfig(current, newCfg)
					current = newCfg
					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down maxmode daemon...")
					// Windows go back to their saved state before we exit.
					host.Disable()
					reconcilerCancel()
					ipcServer.Stop()
					backend.Disconnect()
					os.Exit(0)
				}

			case <-reloadChan:
				newCfg := ipcServer.GetConfig()
				applyConfig(current, newCfg)
				current = newCfg
			}
		}
	}()

	if cfg.EnableOnStart {
		if _, err := host.Enable(); err != nil {
			log.Printf("Warning: Failed to enable maximize mode on start: %v", err)
		}
	}

	log.Println("maxmode daemon started successfully")
	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}

// startReconciler runs the reconciler in the background when enabled and
// returns the function that stops it.
func startReconciler(cfg *config.Config, host *daemon.Host, logger *slog.Logger) context.CancelFunc {
	interval := cfg.ReconcileEvery()
	if interval <= 0 {
		logger.Info("reconciler disabled")
		return func() {}
	}
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: interval,
		Logger:   logger,
	}, host)

	ctx, cancel := context.WithCancel(context.Background())
	go reconciler.Run(ctx)
	return cancel
}

func containersFromDesktops(desktops []int) []platform.ContainerID {
	if len(desktops) == 0 {
		return nil
	}
	out := make([]platform.ContainerID, 0, len(desktops))
	for _, d := range desktops {
		out = append(out, platform.ContainerID(d))
	}
	slices.Sort(out)
	return out
}
