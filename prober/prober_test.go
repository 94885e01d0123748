package prober

import (
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func emptyResult(t *testing.T, result Result, context string) {
	t.Helper()
	if result.IsUp {
		t.Errorf("%s: expected down, got up", context)
	}
	if result.SSLValid != nil || result.SSLExpiryDate != nil || result.ResponseTimeMs != nil {
		t.Errorf("%s: expected all nil detail fields, got %+v", context, result)
	}
}

func TestProbeRejectsBadTargets(t *testing.T) {
	p := Prober{}
	for _, target := range []string{
		"",
		"not a url",
		"ftp://example.com",
		"http://",
		"example.com/no-scheme",
	} {
		emptyResult(t, p.Probe(target), target)
	}
}

func TestProbeUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	result := (&Prober{}).Probe(server.URL)
	if !result.IsUp {
		t.Error("Expected 200 response to count as up")
	}
	if result.ResponseTimeMs == nil || *result.ResponseTimeMs < 0 {
		t.Errorf("Expected a measured response time, got %v", result.ResponseTimeMs)
	}
	// Plain HTTP: no certificate to judge.
	if result.SSLValid != nil || result.SSLExpiryDate != nil {
		t.Errorf("Expected nil SSL fields for plain HTTP, got %+v", result)
	}
}

func TestProbeDownStatus(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()
	p := Prober{}
	for code, up := range map[int]bool{
		200: true,
		301: true,
		399: true,
		400: false,
		404: false,
		500: false,
	} {
		status = code
		if result := p.Probe(server.URL); result.IsUp != up {
			t.Errorf("Status %d: expected isUp=%v, got %v", code, up, result.IsUp)
		}
	}
}

func TestProbeDoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/broken", http.StatusFound)
	}))
	defer server.Close()
	result := (&Prober{}).Probe(server.URL)
	if !result.IsUp {
		t.Error("A redirect response should count as up even if its target is broken")
	}
}

func TestProbeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()
	p := Prober{Timeout: 50 * time.Millisecond}
	emptyResult(t, p.Probe(server.URL), "timeout")
}

func TestProbeNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	emptyResult(t, (&Prober{}).Probe(url), "closed server")
}

func TestProbeTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	p := Prober{}

	// The httptest certificate is self-signed, so against the system roots
	// the chain must be judged invalid, while the probe still reports up.
	result := p.Probe(server.URL)
	if !result.IsUp {
		t.Fatal("Expected TLS server to be up")
	}
	if result.SSLValid == nil || *result.SSLValid {
		t.Errorf("Self-signed certificate should be invalid, got %v", result.SSLValid)
	}
	if result.SSLExpiryDate == nil || !result.SSLExpiryDate.Equal(server.Certificate().NotAfter) {
		t.Errorf("Expected expiry %v, got %v", server.Certificate().NotAfter, result.SSLExpiryDate)
	}

	// Trusting the server's certificate flips the verdict.
	certRoots = x509.NewCertPool()
	certRoots.AddCert(server.Certificate())
	defer func() {
		certRoots = nil
	}()
	result = p.Probe(server.URL)
	if result.SSLValid == nil || !*result.SSLValid {
		t.Errorf("Trusted certificate should be valid, got %v", result.SSLValid)
	}
}
