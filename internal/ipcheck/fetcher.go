// Package ipcheck discovers the machine's public IP address.
package ipcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	errs "github.com/ipwatch/internal/errors"
)

// maxBodySize bounds how much of an echo service response is read.
const maxBodySize = 256

// Fetcher returns the caller's externally visible address. Failure is an
// expected outcome (no network) and is reported as a Network error.
type Fetcher interface {
	FetchPublicIP(ctx context.Context) (string, error)
}

// HTTPFetcher asks a plain-text echo service such as ifconfig.me.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher for url with its own client timeout.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) FetchPublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", errs.Network("fetch ip", f.URL, err)
	}
	// Some services pick their output format from the user agent.
	req.Header.Set("User-Agent", "curl/8.0 (ipwatch)")
	req.Header.Set("Accept", "text/plain")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", errs.Network("fetch ip", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Network("fetch ip", f.URL, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", errs.Network("fetch ip", f.URL, err)
	}
	return validate(f.URL, string(body))
}

func validate(source, raw string) (string, error) {
	ip := strings.TrimSpace(raw)
	if net.ParseIP(ip) == nil {
		return "", errs.Network("fetch ip", source, fmt.Errorf("response is not an IP address: %q", truncate(ip, 64)))
	}
	return ip, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Chain tries each fetcher in order and returns the first address found.
type Chain []Fetcher

func (c Chain) FetchPublicIP(ctx context.Context) (string, error) {
	if len(c) == 0 {
		return "", errs.Network("fetch ip", "", errors.New("no ip sources configured"))
	}
	var failures []error
	for _, f := range c {
		ip, err := f.FetchPublicIP(ctx)
		if err == nil {
			return ip, nil
		}
		failures = append(failures, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errs.Network("fetch ip", "all sources", errors.Join(failures...))
}

// NewDefaultChain builds the chain used by the monitor: the DNS lookup first
// when enabled, then each HTTP echo service.
func NewDefaultChain(services []string, useDNS bool, timeout time.Duration) Chain {
	var chain Chain
	if useDNS {
		chain = append(chain, NewOpenDNSFetcher(timeout))
	}
	for _, url := range services {
		chain = append(chain, NewHTTPFetcher(url, timeout))
	}
	return chain
}
