package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/maxmode/internal/ipc"
)

func (s *Server) handleGetMode(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetModeInput) (*mcpsdk.CallToolResult, ModeOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ModeOutput{}, fmt.Errorf("maxmode daemon not reachable: %w", err)
	}
	desktops := status.Desktops
	if desktops == nil {
		desktops = []int{}
	}
	return nil, ModeOutput{
		Active:         status.Active,
		ManagedWindows: status.ManagedWindows,
		Desktops:       desktops,
		UptimeSeconds:  status.UptimeSeconds,
	}, nil
}

func (s *Server) handleSetMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, SetModeOutput, error) {
	var switchMode func() (*ipc.ModeData, error)
	switch strings.ToLower(strings.TrimSpace(args.Mode)) {
	case "on":
		switchMode = s.client.Enable
	case "off":
		switchMode = s.client.Disable
	case "toggle":
		switchMode = s.client.Toggle
	default:
		return nil, SetModeOutput{}, fmt.Errorf("invalid mode %q: must be on, off or toggle", args.Mode)
	}

	before, err := s.client.GetStatus()
	if err != nil {
		return nil, SetModeOutput{}, fmt.Errorf("maxmode daemon not reachable: %w", err)
	}
	after, err := switchMode()
	if err != nil {
		return nil, SetModeOutput{}, fmt.Errorf("set maximize mode: %w", err)
	}
	return nil, SetModeOutput{
		Active:         after.Active,
		ManagedWindows: after.ManagedWindows,
		Changed:        before.Active != after.Active,
	}, nil
}
