// Package urlguard screens capture targets before a browser is started for
// them. The guard only ever judges well-formed http and https URLs; anything
// else passes through untouched so the browser can fail navigation with its
// own error.
package urlguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"

	"github.com/raysh454/webshot/internal/logging"
)

// ErrHostBlocked reports a capture target that points at a private, loopback,
// or link-local address while blocking is enabled.
var ErrHostBlocked = errors.New("capture target is not allowed")

// Resolver looks up the addresses for a host.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard decides whether a capture URL may reach the browser.
type Guard struct {
	blockPrivate bool
	resolver     Resolver
	logger       logging.Logger
}

// New builds a Guard. With blockPrivate false the guard allows every URL,
// including internal fixtures served from localhost.
func New(blockPrivate bool, logger logging.Logger) *Guard {
	return &Guard{
		blockPrivate: blockPrivate,
		resolver:     systemResolver(logger),
		logger:       logger,
	}
}

// Check inspects a capture URL. It returns ErrHostBlocked when the target
// lives in a forbidden address range, nil otherwise. Malformed URLs, unknown
// schemes, and unresolvable hosts all pass: the browser reports those
// failures with full navigation context.
func (g *Guard) Check(ctx context.Context, rawURL string) error {
	if !g.blockPrivate {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	host := u.Hostname()
	if host == "" {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		return g.judge(host, []net.IP{ip})
	}

	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	if isLocalName(host) {
		return fmt.Errorf("%w: %s is a local name", ErrHostBlocked, host)
	}

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		g.logger.Debug("guard lookup failed, deferring to the browser",
			logging.Field{Key: "host", Value: host},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return g.judge(host, ips)
}

func (g *Guard) judge(host string, ips []net.IP) error {
	for _, ip := range ips {
		if reason := forbiddenReason(ip); reason != "" {
			return fmt.Errorf("%w: %s is %s (%s)", ErrHostBlocked, host, reason, ip)
		}
	}
	return nil
}

// forbiddenReason classifies addresses the guard refuses to hand to the
// browser. Empty means allowed.
func forbiddenReason(ip net.IP) string {
	switch {
	case ip.IsLoopback():
		return "a loopback address"
	case ip.IsPrivate():
		return "a private address"
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		return "a link-local address"
	case ip.IsUnspecified():
		return "an unspecified address"
	default:
		return ""
	}
}

func isLocalName(host string) bool {
	h := strings.TrimSuffix(strings.ToLower(host), ".")
	return h == "localhost" || strings.HasSuffix(h, ".localhost") || strings.HasSuffix(h, ".local")
}

// systemResolver prefers the first resolver listed in /etc/resolv.conf and
// falls back to the default resolver when the file is unreadable.
func systemResolver(logger logging.Logger) Resolver {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		if err != nil && logger != nil {
			logger.Debug("system resolver config unavailable, using default resolver",
				logging.Field{Key: "error", Value: err.Error()})
		}
		return net.DefaultResolver
	}

	server := net.JoinHostPort(cfg.Servers[0], cfg.Port)
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, server)
		},
	}
}
