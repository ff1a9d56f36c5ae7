package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/maxmode/internal/ipc"
)

func runEnable(args []string) int {
	return runModeCommand("enable", "Turn maximize mode on.", args, (*ipc.Client).Enable)
}

func runDisable(args []string) int {
	return runModeCommand("disable", "Turn maximize mode off and put every managed window back.", args, (*ipc.Client).Disable)
}

func runToggle(args []string) int {
	return runModeCommand("toggle", "Flip maximize mode.", args, (*ipc.Client).Toggle)
}

func runModeCommand(name, summary string, args []string, send func(*ipc.Client) (*ipc.ModeData, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: maxmode %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	mode, err := send(ipc.NewClient())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("active:          %v\n", mode.Active)
	fmt.Printf("managed_windows: %d\n", mode.ManagedWindows)
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: maxmode status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("active:          %v\n", status.Active)
	fmt.Printf("managed_windows: %d\n", status.ManagedWindows)
	fmt.Printf("desktops:        %v\n", status.Desktops)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}
