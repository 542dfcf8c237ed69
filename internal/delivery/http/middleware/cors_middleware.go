package middleware

import (
	"net/http"
	"strings"
)

// CORSOptions lists what cross-origin callers may send
type CORSOptions struct {
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
}

// APICORSOptions covers the bearer-token API
var APICORSOptions = CORSOptions{
	AllowedOrigin:  "*",
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type", "Authorization"},
}

// PortalCORSOptions covers the portal, which authenticates with its own held
// session and never accepts an Authorization header
var PortalCORSOptions = CORSOptions{
	AllowedOrigin:  "*",
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type"},
}

type CORSMiddleware struct {
	origin  string
	methods string
	headers string
}

func NewCORSMiddleware(opts CORSOptions) *CORSMiddleware {
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return &CORSMiddleware{
		origin:  origin,
		methods: strings.Join(opts.AllowedMethods, ", "),
		headers: strings.Join(opts.AllowedHeaders, ", "),
	}
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", m.origin)
		h.Set("Access-Control-Allow-Methods", m.methods)
		h.Set("Access-Control-Allow-Headers", m.headers)

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}
