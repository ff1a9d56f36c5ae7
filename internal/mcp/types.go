package mcp

// GetModeInput is the input for the get_maximize_mode tool.
type GetModeInput struct{}

// ModeOutput is the output for the get_maximize_mode tool.
type ModeOutput struct {
	Active         bool  `json:"active"`
	ManagedWindows int   `json:"managed_windows"`
	Desktops       []int `json:"desktops"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
}

// SetModeInput is the input for the set_maximize_mode tool.
type SetModeInput struct {
	Mode string `json:"mode" jsonschema:"One of on, off or toggle"`
}

// SetModeOutput is the output for the set_maximize_mode tool.
type SetModeOutput struct {
	Active         bool `json:"active"`
	ManagedWindows int  `json:"managed_windows"`
	// Changed is false when the mode was already in the requested state.
	Changed bool `json:"changed"`
}
