package prayertimes

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// Connectivity reports whether the network is reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// ConnectivityFunc is an adapter to allow the use of ordinary functions as Connectivity.
type ConnectivityFunc func(ctx context.Context) bool

func (f ConnectivityFunc) Online(ctx context.Context) bool {
	return f(ctx)
}

// Offline is a Connectivity which never reports the network as reachable.
var Offline = ConnectivityFunc(func(context.Context) bool { return false })

// Probe checks connectivity by sending a HEAD request to a host.
// Any HTTP response counts as reachable.
type Probe struct {
	httpClient *http.Client
	url        string
}

var _ Connectivity = (*Probe)(nil)

// NewProbe returns a new Probe. url defaults to [AladhanURL] when empty.
func NewProbe(httpClient *http.Client, url string) *Probe {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if url == "" {
		url = AladhanURL
	}
	return &Probe{httpClient: httpClient, url: url}
}

func (p *Probe) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		slog.Warn("connectivity probe", "error", err)
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Info("Network not reachable", "url", p.url, "error", err)
		return false
	}
	resp.Body.Close()
	return true
}
