package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"hubgate/pkg/logging"
)

// newUpstreamProxy builds the handler application traffic lands on after
// authentication. ReverseProxy passes WebSocket upgrades through, so
// kernel and terminal channels get the same cookie gate as plain requests.
// A nil upstream yields a 503 handler: the gateway can come up before the
// application it fronts is configured.
func newUpstreamProxy(upstream *url.URL) http.Handler {
	if upstream == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no upstream application configured", http.StatusServiceUnavailable)
		})
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Warn("Gateway", "Upstream request failed for %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return proxy
}
