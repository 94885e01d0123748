// Package prober performs single on-demand connectivity and certificate
// checks against website URLs.
package prober

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/idna"
)

// Result of one probe. The pointer fields are nil when the probe never
// completed, and SSLValid and SSLExpiryDate are also nil for plain-HTTP
// targets where no certificate is presented.
type Result struct {
	IsUp           bool       `json:"isUp"`
	SSLValid       *bool      `json:"sslValid"`
	SSLExpiryDate  *time.Time `json:"sslExpiryDate"`
	ResponseTimeMs *int64     `json:"responseTime"`
}

// A Prober runs connectivity checks against URLs.
type Prober struct {
	// Timeout specifies the maximum time for the whole probe, including
	// connection setup and the TLS handshake.
	// If zero, a default timeout of 10 seconds is used.
	Timeout time.Duration
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout != 0 {
		return p.Timeout
	}
	return 10 * time.Second
}

// Probe issues one GET request against rawurl and reports whether the target
// is up, whether its certificate chains to a trusted root, and how long the
// response took. It never fails: malformed URLs, timeouts and network errors
// all yield a "down" Result with nil detail fields.
func (p *Prober) Probe(rawurl string) Result {
	target, err := parseTarget(rawurl)
	if err != nil {
		return Result{}
	}
	client := &http.Client{
		Timeout: p.timeout(),
		// Report on the first response rather than chasing redirects;
		// a 3xx already counts as up.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			// The handshake must succeed even for broken certificates so
			// that the chain can be inspected and reported. Validity is
			// judged separately by verifyCertChain.
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
			DisableKeepAlives: true,
		},
	}
	start := time.Now()
	resp, err := client.Get(target.String())
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()
	elapsed := time.Since(start).Milliseconds()

	result := Result{
		IsUp:           resp.StatusCode >= 200 && resp.StatusCode < 400,
		ResponseTimeMs: &elapsed,
	}
	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		valid := verifyCertChain(resp.TLS, target.Hostname()) == nil
		result.SSLValid = &valid
		expiry := resp.TLS.PeerCertificates[0].NotAfter
		result.SSLExpiryDate = &expiry
	}
	return result
}

// parseTarget validates that rawurl is an absolute http(s) URL and converts
// its hostname to ASCII.
func parseTarget(rawurl string) (*url.URL, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL %q has no host", rawurl)
	}
	ascii, err := idna.ToASCII(u.Hostname())
	if err != nil {
		return nil, err
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(ascii, port)
	} else {
		u.Host = ascii
	}
	return u, nil
}

// Validates that the presented certificate chain is valid for the hostname
// and chains to a trusted root.
func verifyCertChain(state *tls.ConnectionState, hostname string) error {
	pool := x509.NewCertPool()
	for _, peerCert := range state.PeerCertificates[1:] {
		pool.AddCert(peerCert)
	}
	_, err := state.PeerCertificates[0].Verify(x509.VerifyOptions{
		Roots:         certRoots,
		Intermediates: pool,
		DNSName:       hostname,
	})
	return err
}

// certRoots is the certificate roots to use for verifying
// a TLS certificate. It is nil by default so that the system
// root certs are used.
//
// It is a global variable because it is used as a test hook.
var certRoots *x509.CertPool
