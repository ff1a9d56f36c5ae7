package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "enable":
		os.Exit(runEnable(os.Args[2:]))
	case "disable":
		os.Exit(runDisable(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: maxmode <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the maxmode daemon (foreground)")
	fmt.Fprintln(w, "  enable              Turn maximize mode on")
	fmt.Fprintln(w, "  disable             Turn maximize mode off and restore windows")
	fmt.Fprintln(w, "  toggle              Flip maximize mode")
	fmt.Fprintln(w, "  status              Show daemon and mode status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive status panel")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'maxmode <command> --help' for command-specific options.")
}
