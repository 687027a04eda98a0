// Package probe performs the out-of-band network checks behind the
// maturity signals: a TLS handshake against the site's domain and an MX
// record lookup. Both are best effort; failures degrade to absent signals.
package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net"
	"time"

	"golang.org/x/net/idna"
)

// DefaultTimeout bounds each probe
const DefaultTimeout = 5 * time.Second

const tlsPort = "443"

// TLSInfo describes the result of a certificate handshake probe.
// Issuer and ExpiryDays are only meaningful when HasSSL is true.
type TLSInfo struct {
	HasSSL     bool
	Issuer     string
	ExpiryDays int
}

// Resolver is an interface for DNS lookups, allowing dependency injection
// for testing with mock implementations
type Resolver interface {
	// LookupMX returns the MX records for the given domain
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)

	// LookupHost returns the addresses of the given host
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DefaultResolver wraps the standard library's resolver
type DefaultResolver struct{}

// LookupMX implements Resolver.LookupMX using net.DefaultResolver
func (r *DefaultResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}

// LookupHost implements Resolver.LookupHost using net.DefaultResolver
func (r *DefaultResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, host)
}

// CustomResolver uses a specific DNS server with a timeout and no retries
type CustomResolver struct {
	server string
}

// NewCustomResolver creates a resolver that uses the specified DNS server
// The server should be in the format "host:port" (e.g., "1.1.1.1:53")
func NewCustomResolver(server string) *CustomResolver {
	return &CustomResolver{
		server: server,
	}
}

func (r *CustomResolver) resolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{
				Timeout: DefaultTimeout,
			}
			return d.Dial("udp", r.server)
		},
	}
}

// LookupMX implements Resolver.LookupMX using a custom DNS server
func (r *CustomResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return r.resolver().LookupMX(ctx, domain)
}

// LookupHost implements Resolver.LookupHost using a custom DNS server
func (r *CustomResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return r.resolver().LookupHost(ctx, host)
}

// TLSDialer performs the certificate handshake, allowing dependency
// injection for testing
type TLSDialer interface {
	// Handshake connects to address, verifies against serverName, and
	// returns the leaf certificate
	Handshake(ctx context.Context, address, serverName string) (*x509.Certificate, error)
}

// DefaultTLSDialer connects with the system trust roots
type DefaultTLSDialer struct{}

// Handshake implements TLSDialer using crypto/tls
func (d *DefaultTLSDialer) Handshake(ctx context.Context, address, serverName string) (*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: DefaultTimeout},
		Config:    &tls.Config{ServerName: serverName},
	}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.New("no peer certificates presented")
	}
	return state.PeerCertificates[0], nil
}

// Service runs the out-of-band probes
type Service struct {
	resolver Resolver
	dialer   TLSDialer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a probe service with the default resolver and dialer.
// A nil logger falls back to slog.Default().
func NewService(logger *slog.Logger) *Service {
	return NewServiceWith(&DefaultResolver{}, &DefaultTLSDialer{}, logger)
}

// NewServiceWith creates a probe service with explicit dependencies.
// This is useful for testing with mock resolvers and dialers.
func NewServiceWith(resolver Resolver, dialer TLSDialer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		dialer:   dialer,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
}

// TLS probes port 443 of the domain and extracts certificate facts.
// A failed handshake is logged at debug level and reported as an absent
// certificate.
func (s *Service) TLS(ctx context.Context, domain string) TLSInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	host := asciiHost(domain)
	cert, err := s.dialer.Handshake(ctx, net.JoinHostPort(host, tlsPort), host)
	if err != nil {
		s.logger.Debug("tls probe failed", "domain", domain, "error", err)
		return TLSInfo{}
	}

	return TLSInfo{
		HasSSL:     true,
		Issuer:     issuerName(cert),
		ExpiryDays: int(time.Until(cert.NotAfter).Hours() / 24),
	}
}

// MX reports whether the domain can receive mail. The direct MX lookup is
// tried first, then a mail.<domain> host lookup as a fallback for zones
// that publish no MX records.
func (s *Service) MX(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	host := asciiHost(domain)
	records, err := s.resolver.LookupMX(ctx, host)
	if err == nil && len(records) > 0 {
		return true
	}
	if err != nil {
		s.logger.Debug("mx lookup failed", "domain", domain, "error", err)
	}

	addrs, err := s.resolver.LookupHost(ctx, "mail."+host)
	if err != nil {
		return false
	}
	return len(addrs) > 0
}

// issuerName picks the reportable issuer: organization first, then common
// name
func issuerName(cert *x509.Certificate) string {
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	return "Unknown"
}

// asciiHost converts an internationalized hostname to its A-label form for
// dialing. Names that cannot be converted pass through unchanged.
func asciiHost(domain string) string {
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return domain
	}
	return ascii
}
