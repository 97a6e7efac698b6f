// File: client/target.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
)

// Resolver maps a host name to addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// target is the parsed form of a submitted URL.
type target struct {
	host       string // Host header value, port included when given
	hostname   string
	port       uint16
	requestURI string
}

func parseTarget(raw string, defaultPort int) (target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return target{}, err
	}
	if u.Host == "" {
		return target{}, fmt.Errorf("url %q has no host", raw)
	}
	port := uint16(defaultPort)
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return target{}, fmt.Errorf("url %q has invalid port %q", raw, p)
		}
		port = uint16(n)
	}
	return target{
		host:       u.Host,
		hostname:   u.Hostname(),
		port:       port,
		requestURI: u.RequestURI(),
	}, nil
}

// resolve returns the address to connect to, preferring IPv4.
func resolve(ctx context.Context, r Resolver, t target) (netip.AddrPort, error) {
	if ip, err := netip.ParseAddr(t.hostname); err == nil {
		return netip.AddrPortFrom(ip, t.port), nil
	}
	addrs, err := r.LookupNetIP(ctx, "ip", t.hostname)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: %w", t.hostname, err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: no addresses", t.hostname)
	}
	pick := addrs[0]
	for _, a := range addrs {
		if a.Unmap().Is4() {
			pick = a
			break
		}
	}
	return netip.AddrPortFrom(pick.Unmap(), t.port), nil
}
