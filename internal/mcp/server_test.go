package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/maxmode/internal/ipc"
)

type fakeDaemon struct {
	active  bool
	managed int
	calls   []string
	err     error
}

func (f *fakeDaemon) mode() (*ipc.ModeData, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := 0
	if f.active {
		n = f.managed
	}
	return &ipc.ModeData{Active: f.active, ManagedWindows: n}, nil
}

func (f *fakeDaemon) Enable() (*ipc.ModeData, error) {
	f.calls = append(f.calls, "enable")
	f.active = true
	return f.mode()
}

func (f *fakeDaemon) Disable() (*ipc.ModeData, error) {
	f.calls = append(f.calls, "disable")
	f.active = false
	return f.mode()
}

func (f *fakeDaemon) Toggle() (*ipc.ModeData, error) {
	f.calls = append(f.calls, "toggle")
	f.active = !f.active
	return f.mode()
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, _ := f.mode()
	return &ipc.StatusData{Active: m.Active, ManagedWindows: m.ManagedWindows, DaemonRunning: true}, nil
}

func TestGetMode(t *testing.T) {
	d := &fakeDaemon{active: true, managed: 3}
	s := NewServer(d)

	_, out, err := s.handleGetMode(context.Background(), nil, GetModeInput{})
	if err != nil {
		t.Fatalf("get mode: %v", err)
	}
	if !out.Active || out.ManagedWindows != 3 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Desktops == nil {
		t.Fatalf("expected desktops to be an empty list, not nil")
	}
}

func TestGetMode_DaemonDown(t *testing.T) {
	s := NewServer(&fakeDaemon{err: errors.New("connection refused")})

	_, _, err := s.handleGetMode(context.Background(), nil, GetModeInput{})
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}

func TestSetMode(t *testing.T) {
	tests := []struct {
		name        string
		startActive bool
		mode        string
		wantActive  bool
		wantChanged bool
		wantCall    string
	}{
		{"on from off", false, "on", true, true, "enable"},
		{"on when already on", true, "ON", true, false, "enable"},
		{"off from on", true, "off", false, true, "disable"},
		{"toggle", false, " toggle ", true, true, "toggle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDaemon{active: tt.startActive, managed: 2}
			s := NewServer(d)

			_, out, err := s.handleSetMode(context.Background(), nil, SetModeInput{Mode: tt.mode})
			if err != nil {
				t.Fatalf("set mode: %v", err)
			}
			if out.Active != tt.wantActive || out.Changed != tt.wantChanged {
				t.Fatalf("unexpected output %+v", out)
			}
			if len(d.calls) != 1 || d.calls[0] != tt.wantCall {
				t.Fatalf("expected one %s call, got %v", tt.wantCall, d.calls)
			}
		})
	}
}

func TestSetMode_InvalidMode(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)

	_, _, err := s.handleSetMode(context.Background(), nil, SetModeInput{Mode: "maybe"})
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
	if len(d.calls) != 0 {
		t.Fatalf("expected no daemon calls, got %v", d.calls)
	}
}

func TestToolsAreListed(t *testing.T) {
	ctx := context.Background()
	s := NewServer(&fakeDaemon{})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"get_maximize_mode", "set_maximize_mode"} {
		if !names[want] {
			t.Fatalf("expected tool %q, got %v", want, names)
		}
	}
}
