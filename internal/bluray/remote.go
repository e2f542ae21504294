package bluray

import (
	"context"
	"fmt"
	"strings"

	"sonybd/internal"
	"sonybd/internal/device"
)

// supportedButtons is what the host offers to its UI, in display order
var supportedButtons = []device.SupportedButton{
	{ID: ButtonSelect, Label: "Select"},
	{ID: ButtonForward, Label: "Fast Forward"},
	{ID: ButtonSkip, Label: "Skip"},
	{ID: ButtonInstantReplay, Label: "Replay"},
}

// BlurayRemote implements the Device interface for Sony Blu-ray players
type BlurayRemote struct {
	client Client
	info   device.DeviceInfo
}

// NewBlurayRemote creates a BlurayRemote with a real or simulated client
func NewBlurayRemote(id string, opts Options, deps Dependencies, mode *internal.FnModeOptions) *BlurayRemote {
	return NewBlurayRemoteWithClient(id, opts.Address, NewClient(opts, deps, mode))
}

// NewBlurayRemoteWithClient wraps an existing client
func NewBlurayRemoteWithClient(id, address string, client Client) *BlurayRemote {
	return &BlurayRemote{
		client: client,
		info: device.DeviceInfo{
			ID:      id,
			Type:    "sony_bluray",
			Model:   "Sony Blu-ray",
			Address: address,
			Capabilities: []string{
				"power_on",
				"remote_control",
				"status",
			},
		},
	}
}

// GetDeviceInfo returns information about this player
func (br *BlurayRemote) GetDeviceInfo() device.DeviceInfo {
	return br.info
}

// SupportedButtons returns the buttons a UI should offer
func (br *BlurayRemote) SupportedButtons() []device.SupportedButton {
	return SupportedButtons()
}

// SupportedButtons lists the host buttons every Blu-ray remote offers
func SupportedButtons() []device.SupportedButton {
	return append([]device.SupportedButton(nil), supportedButtons...)
}

func (br *BlurayRemote) Start(ctx context.Context) error {
	return br.client.Start(ctx)
}

func (br *BlurayRemote) On(ctx context.Context) error {
	return br.client.On(ctx)
}

func (br *BlurayRemote) Off(ctx context.Context) error {
	return br.client.Off(ctx)
}

func (br *BlurayRemote) PressButton(ctx context.Context, button string) error {
	return br.client.ButtonPress(ctx, button)
}

func (br *BlurayRemote) Status(ctx context.Context) (*Status, error) {
	return br.client.GetStatus(ctx)
}

// Process handles JSON action requests and routes them to appropriate methods
func (br *BlurayRemote) Process(ctx context.Context, actionJSON []byte) (*device.ActionResponse, error) {
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	switch request.Type {
	case device.ActionTypeButton:
		return br.processButtonAction(ctx, request)
	case device.ActionTypePower:
		return br.processPowerAction(ctx, request)
	case device.ActionTypeStatus:
		return br.processStatusAction(ctx)
	default:
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported action type: %s", request.Type),
		}, nil
	}
}

func (br *BlurayRemote) processButtonAction(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	if err := br.client.ButtonPress(ctx, request.Action); err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("button press failed: %v", err),
		}, nil
	}

	return &device.ActionResponse{
		Success: true,
		Data:    fmt.Sprintf("Button '%s' pressed", request.Action),
	}, nil
}

func (br *BlurayRemote) processPowerAction(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	var err error
	switch device.PowerAction(strings.ToLower(request.Action)) {
	case device.PowerActionOn:
		err = br.client.On(ctx)
	case device.PowerActionOff:
		err = br.client.Off(ctx)
	default:
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported power action: %s", request.Action),
		}, nil
	}

	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("power %s failed: %v", request.Action, err),
		}, nil
	}

	return &device.ActionResponse{
		Success: true,
		Data:    fmt.Sprintf("Power '%s' executed successfully", request.Action),
	}, nil
}

func (br *BlurayRemote) processStatusAction(ctx context.Context) (*device.ActionResponse, error) {
	status, err := br.client.GetStatus(ctx)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("status request failed: %v", err),
		}, nil
	}

	return &device.ActionResponse{
		Success: true,
		Data:    status,
	}, nil
}
