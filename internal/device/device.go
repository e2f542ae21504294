package device

import (
	"context"
	"encoding/json"
	"fmt"
)

// Device represents a generic device that can process commands
type Device interface {
	// Process handles a JSON-encoded action and executes the corresponding operation
	Process(ctx context.Context, actionJSON []byte) (*ActionResponse, error)

	// GetDeviceInfo returns basic information about the device
	GetDeviceInfo() DeviceInfo

	// SupportedButtons lists the logical buttons a UI may present
	SupportedButtons() []SupportedButton
}

// DeviceInfo contains basic information about a device
type DeviceInfo struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Model        string   `json:"model"`
	Address      string   `json:"address"`
	Capabilities []string `json:"capabilities"`
}

// SupportedButton pairs a host button id with a human-readable label.
type SupportedButton struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ActionType represents the type of action to perform
type ActionType string

const (
	ActionTypeButton ActionType = "button"
	ActionTypePower  ActionType = "power"
	ActionTypeStatus ActionType = "status"
)

// PowerAction is the action name for ActionTypePower requests
type PowerAction string

const (
	PowerActionOn  PowerAction = "on"
	PowerActionOff PowerAction = "off"
)

// ActionRequest represents a JSON action request
type ActionRequest struct {
	Type       ActionType             `json:"type"`       // "button", "power" or "status"
	Action     string                 `json:"action"`     // button id or power action
	Parameters map[string]interface{} `json:"parameters"` // optional parameters
}

// ActionResponse represents the response from processing an action
type ActionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ParseActionRequest parses JSON input into ActionRequest
func ParseActionRequest(actionJSON []byte) (*ActionRequest, error) {
	var request ActionRequest
	if err := json.Unmarshal(actionJSON, &request); err != nil {
		return nil, fmt.Errorf("failed to parse action request: %w", err)
	}

	if request.Type == "" {
		return nil, fmt.Errorf("action type is required")
	}

	// status needs no action name
	if request.Action == "" && request.Type != ActionTypeStatus {
		return nil, fmt.Errorf("action is required")
	}

	return &request, nil
}
