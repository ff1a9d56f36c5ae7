package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/maxmode/internal/config"
	"github.com/1broseidon/maxmode/internal/daemon"
	"github.com/1broseidon/maxmode/internal/runtimepath"
)

// ModeSwitch is the daemon-side view of the maximize mode.
type ModeSwitch interface {
	Enable() (bool, error)
	Disable() bool
	Toggle() (bool, error)
	Status() daemon.Status
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	mode         ModeSwitch
	loadConfig   func() (*config.Config, error)
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(cfg *config.Config, mode ModeSwitch, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, cfg, mode, reloadChan), nil
}

// NewServerAt creates a new IPC server listening on socketPath.
func NewServerAt(socketPath string, cfg *config.Config, mode ModeSwitch, reloadChan chan struct{}) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		mode:       mode,
		loadConfig: config.Load,
		reloadChan: reloadChan,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandEnable:
		return s.handleEnable()
	case CommandDisable:
		return s.handleDisable()
	case CommandToggle:
		return s.handleToggle()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleEnable() *Response {
	if _, err := s.mode.Enable(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to enable maximize mode: %v", err))
	}
	return s.modeResponse()
}

func (s *Server) handleDisable() *Response {
	s.mode.Disable()
	return s.modeResponse()
}

func (s *Server) handleToggle() *Response {
	if _, err := s.mode.Toggle(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle maximize mode: %v", err))
	}
	return s.modeResponse()
}

func (s *Server) modeResponse() *Response {
	st := s.mode.Status()
	resp, err := NewOKResponse(ModeData{
		Active:         st.Active,
		ManagedWindows: st.ManagedWindows,
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	st := s.mode.Status()

	desktops := make([]int, 0, len(st.Containers))
	for _, c := range st.Containers {
		desktops = append(desktops, int(c))
	}
	status := StatusData{
		Active:         st.Active,
		ManagedWindows: st.ManagedWindows,
		Desktops:       desktops,
		UptimeSeconds:  int64(st.Uptime / time.Second),
		DaemonRunning:  true,
	}
	if st.Active {
		status.ActiveSinceUnix = st.ActiveSince.Unix()
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.UpdateConfig(newCfg)

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
