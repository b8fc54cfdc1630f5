package checker

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type testCert struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

func newTestCA(t *testing.T, name string) testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: name},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create CA: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse CA: %v", err)
	}
	return testCert{cert: cert, key: key}
}

func newTestLeaf(t *testing.T, ca testCert, notBefore, notAfter time.Time) testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatalf("create leaf: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse leaf: %v", err)
	}
	return testCert{cert: cert, key: key}
}

// startTLSServer serves leaf followed by ca and returns the host:port.
func startTLSServer(t *testing.T, leaf, ca testCert) string {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{leaf.cert.Raw, ca.cert.Raw},
			PrivateKey:  leaf.key,
		}},
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv.Listener.Addr().String()
}

func poolOf(certs ...*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}

func TestCertValidatorValidChain(t *testing.T) {
	ca := newTestCA(t, "Test Root")
	leaf := newTestLeaf(t, ca, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	host := startTLSServer(t, leaf, ca)

	v := NewCertValidator("", 5*time.Second)
	v.RootCAs = poolOf(ca.cert)

	if got := v.Validate(context.Background(), host); got != CertOK {
		t.Fatalf("Validate = %q, want %q", got, CertOK)
	}
}

func TestCertValidatorExpiredLeaf(t *testing.T) {
	ca := newTestCA(t, "Test Root")
	leaf := newTestLeaf(t, ca, time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour))
	host := startTLSServer(t, leaf, ca)

	v := NewCertValidator("", 5*time.Second)
	v.RootCAs = poolOf(ca.cert)

	got := v.Validate(context.Background(), host)
	if !strings.Contains(got, "has expired or is not yet valid") {
		t.Fatalf("expected expiry diagnostic, got %q", got)
	}
	if !strings.HasPrefix(got, "Certificate 1 ") {
		t.Fatalf("expected leaf to be named, got %q", got)
	}
}

func TestCertValidatorUntrustedRoot(t *testing.T) {
	ca := newTestCA(t, "Test Root")
	leaf := newTestLeaf(t, ca, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	host := startTLSServer(t, leaf, ca)

	v := NewCertValidator("", 5*time.Second)
	v.RootCAs = x509.NewCertPool()

	if got := v.Validate(context.Background(), host); !strings.HasPrefix(got, "SSL error: ") {
		t.Fatalf("expected SSL error, got %q", got)
	}
}

func TestCertValidatorUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	v := NewCertValidator("", 2*time.Second)
	if got := v.Validate(context.Background(), addr); !strings.HasPrefix(got, "An unexpected error occurred: ") {
		t.Fatalf("expected unexpected error, got %q", got)
	}
}

func TestCertValidatorDefaultPort(t *testing.T) {
	v := NewCertValidator("", 0)
	addr, name := v.address("example.com")
	if addr != "example.com:443" || name != "example.com" {
		t.Fatalf("address = %q,%q", addr, name)
	}
	addr, name = v.address("example.com:8443")
	if addr != "example.com:8443" || name != "example.com" {
		t.Fatalf("address with port = %q,%q", addr, name)
	}
}

func TestVerifyChain(t *testing.T) {
	ca := newTestCA(t, "Test Root")
	other := newTestCA(t, "Other Root")
	now := time.Now()
	leaf := newTestLeaf(t, ca, now.Add(-time.Hour), now.Add(time.Hour))

	tests := []struct {
		name   string
		chain  []*x509.Certificate
		now    time.Time
		want   string
		prefix bool
	}{
		{name: "empty chain", chain: nil, now: now, want: CertOK},
		{name: "single certificate", chain: []*x509.Certificate{leaf.cert}, now: now, want: CertOK},
		{name: "valid pair", chain: []*x509.Certificate{leaf.cert, ca.cert}, now: now, want: CertOK},
		{name: "wrong issuer", chain: []*x509.Certificate{leaf.cert, other.cert}, now: now, want: "Signature verification failed for certificate 1: ", prefix: true},
		{name: "leaf not yet valid", chain: []*x509.Certificate{leaf.cert, ca.cert}, now: now.Add(-2 * time.Hour), want: "Certificate 1 has expired or is not yet valid."},
		{name: "leaf expired", chain: []*x509.Certificate{leaf.cert, ca.cert}, now: now.Add(2 * time.Hour), want: "Certificate 1 has expired or is not yet valid."},
		{name: "intermediate checked first", chain: []*x509.Certificate{leaf.cert, ca.cert, other.cert}, now: now, want: "Signature verification failed for certificate 2: ", prefix: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verifyChain(tt.chain, tt.now)
			if tt.prefix {
				if !strings.HasPrefix(got, tt.want) || !strings.HasSuffix(got, ".") {
					t.Fatalf("verifyChain = %q, want prefix %q", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("verifyChain = %q, want %q", got, tt.want)
			}
		})
	}
}
