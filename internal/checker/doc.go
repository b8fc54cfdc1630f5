// Package checker implements the per-target probes of a health-check run.
//
// Architecture overview:
//
//   - DNSResolver maps a host to its first IPv4 address. Failures never
//     surface as errors; the literal "Error" is returned instead.
//   - CertValidator performs a TLS handshake and walks the certificate chain,
//     reporting "ok" or a human readable diagnostic.
//   - RedirectTracer follows redirects manually with HEAD requests and renders
//     every hop's status line and headers in the order they arrived on the wire.
//   - ContentFetcher performs the final GET and normalizes the body.
//
// Every probe converts its failures into strings or zero values so a run can
// record them in place of results and move on to the next target. The narrow
// interfaces in checker.go (HostResolver, CertChecker, Tracer, Fetcher) let the
// orchestrator be tested with fakes.
package checker
