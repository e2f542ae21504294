package wol

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"sonybd/internal/logger"
)

const (
	// DefaultPort is the standard Wake-on-LAN UDP port
	DefaultPort = 9
	// MagicPacketSize is 6x 0xFF followed by 16 repetitions of the MAC
	MagicPacketSize = 6 + 16*6

	// DefaultBroadcastAddr is the limited broadcast address on the WoL port
	DefaultBroadcastAddr = "255.255.255.255:9"
)

// MagicPacket builds the wake packet for a colon- or dash-delimited MAC
func MagicPacket(mac string) ([]byte, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return nil, fmt.Errorf("invalid hardware address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return nil, fmt.Errorf("invalid hardware address %q: want 6 octets, got %d", mac, len(hw))
	}

	packet := make([]byte, 0, MagicPacketSize)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	return packet, nil
}

// Sender broadcasts magic packets over UDP
type Sender struct {
	broadcastAddr string
	logger        zerolog.Logger
}

// SenderOption configures a Sender
type SenderOption func(*Sender)

// WithBroadcastAddr overrides the destination host:port
func WithBroadcastAddr(addr string) SenderOption {
	return func(s *Sender) {
		s.broadcastAddr = addr
	}
}

// NewSender creates a sender targeting the limited broadcast address
func NewSender(options ...SenderOption) *Sender {
	s := &Sender{
		broadcastAddr: DefaultBroadcastAddr,
		logger:        logger.Component("wol"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Wake sends one magic packet for mac. Devices that are already on ignore it.
func (s *Sender) Wake(ctx context.Context, mac string) error {
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp4", s.broadcastAddr)
	if err != nil {
		return fmt.Errorf("failed to open broadcast socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}

	n, err := conn.Write(packet)
	if err != nil {
		return fmt.Errorf("failed to send magic packet to %s: %w", mac, err)
	}
	if n != len(packet) {
		return fmt.Errorf("short write sending magic packet: %d of %d bytes", n, len(packet))
	}

	s.logger.Debug().
		Str("mac", mac).
		Str("broadcast", s.broadcastAddr).
		Msg("Sent wake-on-lan packet")

	return nil
}
