// banner.go loads the optional header banner image from a local path
// or an http(s) URL. All network access goes through an SSRF-safe HTTP
// client that blocks private, loopback, and link-local addresses.

package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxBannerBytes caps a fetched banner image at 5 MB.
const maxBannerBytes = 5 << 20

// LoadBanner resolves a banner reference to image bytes. A reference
// starting with http:// or https:// is fetched over the network; any
// other non-empty reference is read from the local filesystem. An
// empty reference returns (nil, nil) and the document renders without
// a banner region.
func LoadBanner(ref string) ([]byte, error) {
	if ref == "" {
		return nil, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchBanner(ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading banner image: %w", err)
	}
	return data, nil
}

// ssrfSafeDialer returns a DialContext that resolves DNS and checks every
// resolved IP against the private/loopback/link-local blocklist BEFORE
// connecting.  This eliminates the DNS rebinding TOCTOU race that exists
// when the hostname check and the actual connection resolve independently.
func ssrfSafeDialer() func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	resolver := &net.Resolver{}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		// Block obviously dangerous hostnames before any DNS lookup.
		if isBlockedHostname(host) {
			return nil, errors.New("blocked host")
		}

		// Resolve with a tight timeout to prevent hanging on unresolvable hosts.
		resolveCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		ips, err := resolver.LookupIPAddr(resolveCtx, host)
		if err != nil {
			return nil, err
		}

		// Check ALL resolved IPs -- block if any are private.
		for _, ip := range ips {
			if isBlockedIP(ip.IP) {
				return nil, errors.New("blocked IP")
			}
		}

		// Connect to the resolved IP directly (bypasses further DNS).
		// Try each resolved address until one succeeds.
		for _, ip := range ips {
			target := net.JoinHostPort(ip.IP.String(), port)
			conn, err := dialer.DialContext(ctx, network, target)
			if err == nil {
				return conn, nil
			}
		}
		return nil, errors.New("all addresses failed")
	}
}

// bannerClient uses a custom transport with an SSRF-safe dialer that
// validates resolved IPs before connecting.
var bannerClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		DialContext:           ssrfSafeDialer(),
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
	},
	// Validate each redirect target against the SSRF blocklist.
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return errors.New("too many redirects")
		}
		if isBlockedHostname(req.URL.Hostname()) {
			return errors.New("redirect to blocked host")
		}
		// The custom dialer will also check the resolved IP, so even if
		// the hostname looks benign, a private IP will still be blocked.
		return nil
	},
}

// fetchBanner downloads a banner image and returns its bytes. The
// response must be an image/* content type and at most 5 MB.
func fetchBanner(rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid banner URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported banner URL scheme: %s", parsed.Scheme)
	}

	// Hostname pre-check (the dialer also checks resolved IPs).
	if isBlockedHostname(parsed.Hostname()) {
		return nil, errors.New("banner URL host is blocked")
	}

	resp, err := bannerClient.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching banner image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching banner image: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("banner URL returned %q, expected an image", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBannerBytes))
	if err != nil {
		return nil, fmt.Errorf("reading banner image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("banner image is empty")
	}
	return data, nil
}

// isBlockedHostname returns true if the hostname should be blocked
// without needing DNS resolution.
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".local") ||
		lower == "metadata.google.internal" ||
		strings.HasSuffix(lower, ".internal") {
		return true
	}
	// Also block if the host is a raw IP that is private.
	if ip := net.ParseIP(host); ip != nil {
		return isBlockedIP(ip)
	}
	return false
}

// isBlockedIP returns true if the IP address is in a range that should
// not be fetched (private, loopback, link-local, unspecified).
func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
