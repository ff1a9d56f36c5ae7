package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/maxmode/internal/ipc"
)

const (
	ServerName    = "maxmode"
	ServerVersion = "0.1.0"
)

// DaemonClient is the part of the IPC client the tools use.
type DaemonClient interface {
	Enable() (*ipc.ModeData, error)
	Disable() (*ipc.ModeData, error)
	Toggle() (*ipc.ModeData, error)
	GetStatus() (*ipc.StatusData, error)
}

var _ DaemonClient = (*ipc.Client)(nil)

// Server is the MCP server that lets agents inspect and switch maximize mode.
// Every tool call is forwarded to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
}

// NewServer creates an MCP server talking to the daemon through client. A nil
// client uses the default socket.
func NewServer(client DaemonClient) *Server {
	if client == nil {
		client = ipc.NewClient()
	}
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_maximize_mode",
		Description: "Report whether maximize mode is active, how many windows it manages and which virtual desktops it watches.",
	}, s.handleGetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_maximize_mode",
		Description: "Turn maximize mode on or off, or toggle it. While on, every window that can be maximized is maximized; turning it off puts each window back the way it was.",
	}, s.handleSetMode)
}
