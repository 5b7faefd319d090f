// Package proxy forwards authenticated completion requests to the upstream
// provider. Clients never see the provider key.
package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/itchan-dev/authgate/shared/config"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/logger"
	"github.com/itchan-dev/authgate/shared/utils"
)

// ErrNotConfigured is returned by New when no upstream url is set.
var ErrNotConfigured = errors.New("completion upstream is not configured")

type Proxy struct {
	rp *httputil.ReverseProxy
}

// New builds a proxy that forwards requests to cfg.UpstreamURL with the
// request path appended, replacing the caller's session token with apiKey.
func New(cfg config.Completion, apiKey string) (*Proxy, error) {
	if cfg.UpstreamURL == "" {
		return nil, ErrNotConfigured
	}
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute", cfg.UpstreamURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout
	transport.DialContext = (&net.Dialer{Timeout: cfg.Timeout}).DialContext

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Del("Cookie")
			if apiKey != "" {
				pr.Out.Header.Set("Authorization", "Bearer "+apiKey)
			} else {
				pr.Out.Header.Del("Authorization")
			}
		},
		Transport: transport,
		// stream tokens as they arrive
		FlushInterval: -1,
		ErrorHandler:  writeUpstreamError,
	}
	return &Proxy{rp: rp}, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Error("completion upstream failed", "path", r.URL.Path, "error", err)
	utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
		Message:    "Completion service unavailable",
		StatusCode: http.StatusBadGateway,
	})
}

// Unavailable answers 503 for deployments without an upstream.
func Unavailable(w http.ResponseWriter, r *http.Request) {
	utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
		Message:    "Completion service is not enabled",
		StatusCode: http.StatusServiceUnavailable,
	})
}

