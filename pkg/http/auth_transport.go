package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type headerTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}

	// Correlate outbound calls with the inbound request that caused them.
	if reqID := middleware.GetReqID(req.Context()); reqID != "" && reqCopy.Header.Get(middleware.RequestIDHeader) == "" {
		reqCopy.Header.Set(middleware.RequestIDHeader, reqID)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken adds a static bearer token and forwards the request ID.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			token:     token,
			transport: rt,
		}
	})
}
