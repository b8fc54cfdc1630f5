package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const defaultDNSTimeout = 5 * time.Second

// DNSResolver resolves hosts to their first IPv4 address. With Nameservers set
// it queries the first one directly; otherwise the system resolver is used.
type DNSResolver struct {
	Timeout     time.Duration
	Nameservers []string // host or host:port, port 53 assumed
}

// NewDNSResolver creates a resolver. A non-positive timeout falls back to five seconds.
func NewDNSResolver(timeout time.Duration, nameservers []string) *DNSResolver {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	return &DNSResolver{Timeout: timeout, Nameservers: nameservers}
}

// Resolve never fails loudly: any lookup problem yields ResolveError.
func (r *DNSResolver) Resolve(ctx context.Context, host string) string {
	name := Hostname(host)
	if name == "" {
		return ResolveError
	}
	if ip := net.ParseIP(name); ip != nil {
		return ip.String()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		ip  string
		err error
	)
	if len(r.Nameservers) > 0 {
		ip, err = r.queryNameserver(lookupCtx, name, timeout)
	} else {
		ip, err = lookupSystem(lookupCtx, name)
	}
	if err != nil || ip == "" {
		return ResolveError
	}
	return ip
}

func lookupSystem(ctx context.Context, name string) (string, error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", name)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", errors.New("no A records found")
}

func (r *DNSResolver) queryNameserver(ctx context.Context, name string, timeout time.Duration) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: timeout}
	in, _, err := client.ExchangeContext(ctx, msg, nameserverAddr(r.Nameservers[0]))
	if err != nil {
		return "", fmt.Errorf("query %s: %w", r.Nameservers[0], err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("nameserver returned %s", dns.RcodeToString[in.Rcode])
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", errors.New("no A records found")
}

func nameserverAddr(ns string) string {
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns
	}
	return net.JoinHostPort(Hostname(ns), "53")
}
