package proxy

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Manager handles the rotation of proxies and user agents.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the proxy URLs. An empty userAgents list falls back to
// a built-in set of desktop browsers.
func NewManager(proxies, userAgents []string) (*Manager, error) {
	m := &Manager{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", p, err)
		}
		m.proxies = append(m.proxies, u)
	}
	for _, ua := range userAgents {
		if ua = strings.TrimSpace(ua); ua != "" {
			m.userAgents = append(m.userAgents, ua)
		}
	}
	if len(m.userAgents) == 0 {
		m.userAgents = defaultUserAgents
	}
	return m, nil
}

// GetProxy returns a proxy URL from the list, rotating sequentially.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// ProxyFunc adapts GetProxy to http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	return m.userAgents[rand.IntN(len(m.userAgents))]
}
