// Package netif looks up the local hardware address the player pairs against.
package netif

import (
	"fmt"
	"net"
)

// Resolver picks the hardware address of a named interface, or of the
// first interface that is up, not loopback and has a MAC.
type Resolver struct {
	name       string
	interfaces func() ([]net.Interface, error)
}

// NewResolver creates a resolver; an empty name means "first usable interface"
func NewResolver(name string) *Resolver {
	return &Resolver{
		name:       name,
		interfaces: net.Interfaces,
	}
}

// Static always returns the same address. Useful when the host has several NICs.
type Static string

func (s Static) HardwareAddr() (string, error) {
	if s == "" {
		return "", fmt.Errorf("no hardware address configured")
	}
	return string(s), nil
}

// HardwareAddr returns the colon-delimited MAC of the selected interface
func (r *Resolver) HardwareAddr() (string, error) {
	ifaces, err := r.interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to list network interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if r.name != "" {
			if iface.Name != r.name {
				continue
			}
			if len(iface.HardwareAddr) == 0 {
				return "", fmt.Errorf("interface %s has no hardware address", r.name)
			}
			return iface.HardwareAddr.String(), nil
		}

		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if len(iface.HardwareAddr) != 6 {
			continue
		}
		return iface.HardwareAddr.String(), nil
	}

	if r.name != "" {
		return "", fmt.Errorf("interface %s not found", r.name)
	}
	return "", fmt.Errorf("no interface with a hardware address found")
}
