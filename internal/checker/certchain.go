package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"

	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

const (
	// CertOK is reported when the handshake succeeds and every chain link holds.
	CertOK = "ok"

	defaultTLSTimeout = 10 * time.Second
)

// CertValidator performs a TLS handshake with a host and checks every link of
// the resulting certificate chain for validity period and issuer signature.
type CertValidator struct {
	Port    string         // dialed when the host carries no port; defaults to 443
	Timeout time.Duration  // dial and handshake timeout
	RootCAs *x509.CertPool // nil uses the system trust store
	Now     func() time.Time
}

// NewCertValidator creates a validator dialing port with the given timeout.
func NewCertValidator(port string, timeout time.Duration) *CertValidator {
	if port == "" {
		port = consts.DefaultTLSPort
	}
	if timeout <= 0 {
		timeout = defaultTLSTimeout
	}
	return &CertValidator{Port: port, Timeout: timeout}
}

// Validate returns CertOK or a diagnostic. Handshake failures are prefixed
// "SSL error: "; dial failures and timeouts "An unexpected error occurred: ".
// When the handshake rejects the chain, the presented certificates are walked
// so expired or mis-signed links are named precisely.
func (v *CertValidator) Validate(ctx context.Context, host string) string {
	addr, serverName := v.address(host)
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = defaultTLSTimeout
	}

	hsCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(hsCtx, "tcp", addr)
	if err != nil {
		return unexpectedCertError(err)
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: serverName,
		RootCAs:    v.RootCAs,
		Time:       v.now,
	})
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		var verifyErr *tls.CertificateVerificationError
		if errors.As(err, &verifyErr) {
			if msg := verifyChain(verifyErr.UnverifiedCertificates, v.now()); msg != CertOK {
				return msg
			}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return unexpectedCertError(err)
		}
		return fmt.Sprintf("SSL error: %v", err)
	}

	state := tlsConn.ConnectionState()
	chain := state.PeerCertificates
	if len(state.VerifiedChains) > 0 {
		chain = state.VerifiedChains[0]
	}
	return verifyChain(chain, v.now())
}

func (v *CertValidator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v *CertValidator) address(host string) (addr, serverName string) {
	if h, p, err := net.SplitHostPort(host); err == nil {
		return net.JoinHostPort(h, p), h
	}
	port := v.Port
	if port == "" {
		port = consts.DefaultTLSPort
	}
	name := Hostname(host)
	return net.JoinHostPort(name, port), name
}

// verifyChain walks chain (leaf first) from the issuer end toward the leaf,
// checking each certificate against the next one. Certificates are numbered
// from 1 at the leaf. Chains shorter than two members are trivially valid.
func verifyChain(chain []*x509.Certificate, now time.Time) string {
	for i := len(chain) - 2; i >= 0; i-- {
		cert, issuer := chain[i], chain[i+1]
		if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
			return fmt.Sprintf("Certificate %d has expired or is not yet valid.", i+1)
		}
		if err := cert.CheckSignatureFrom(issuer); err != nil {
			return fmt.Sprintf("Signature verification failed for certificate %d: %v.", i+1, err)
		}
	}
	return CertOK
}

func unexpectedCertError(err error) string {
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
