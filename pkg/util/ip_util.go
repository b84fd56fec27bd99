package util

import (
	"Netsim/api"
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// HostPair is the addressing of a point-to-point link: the first and second
// usable host addresses of Network.
type HostPair struct {
	Network *net.IPNet
	A       net.IP
	B       net.IP
}

// PrefixLen returns the prefix length of the pair's network.
func (p HostPair) PrefixLen() int {
	ones, _ := p.Network.Mask.Size()
	return ones
}

// AddrA returns A with the network mask, ready for an address assignment.
func (p HostPair) AddrA() *net.IPNet {
	return &net.IPNet{IP: p.A, Mask: p.Network.Mask}
}

// AddrB returns B with the network mask.
func (p HostPair) AddrB() *net.IPNet {
	return &net.IPNet{IP: p.B, Mask: p.Network.Mask}
}

// ParseHostPair parses an IPv4 network in prefix notation (e.g. 10.10.0.0/30)
// and derives its first two usable host addresses. Networks with host bits
// set, IPv6 networks and prefixes longer than /30 are rejected.
func ParseHostPair(s string) (HostPair, error) {
	ip, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		return HostPair{}, fmt.Errorf("failed to parse CIDR %q: %v: %w", s, err, api.ErrInvalidArgument)
	}
	if ip.To4() == nil {
		return HostPair{}, fmt.Errorf("CIDR %q is not IPv4: %w", s, api.ErrInvalidArgument)
	}
	if !ip.Equal(ipNet.IP) {
		return HostPair{}, fmt.Errorf("CIDR %q has host bits set: %w", s, api.ErrInvalidArgument)
	}
	if ones, _ := ipNet.Mask.Size(); ones > 30 {
		return HostPair{}, fmt.Errorf("CIDR %q has fewer than two usable host addresses: %w", s, api.ErrInvalidArgument)
	}

	a, err := cidr.Host(ipNet, 1)
	if err != nil {
		return HostPair{}, fmt.Errorf("failed to derive first host of %q: %v: %w", s, err, api.ErrInvalidArgument)
	}
	b, err := cidr.Host(ipNet, 2)
	if err != nil {
		return HostPair{}, fmt.Errorf("failed to derive second host of %q: %v: %w", s, err, api.ErrInvalidArgument)
	}
	return HostPair{Network: ipNet, A: a.To4(), B: b.To4()}, nil
}
