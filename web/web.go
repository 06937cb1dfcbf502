// Package web serves the embedded single-page shell of the inventory client.
package web

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/jmcleod/stockroom/routes"
)

//go:embed dist/*
var content embed.FS

// PageMetaName is the meta tag through which the shell learns which page a
// deep link points at.
const PageMetaName = "stockroom-page"

// NonceFunc returns the per-request CSP nonce from the request context.
// When nil, no nonce meta tag is injected into the HTML.
type NonceFunc func(r *http.Request) string

type options struct {
	nonce   NonceFunc
	apiBase string
}

// Option configures Handler.
type Option func(*options)

// WithNonce injects <meta name="csp-nonce"> into HTML responses.
func WithNonce(fn NonceFunc) Option {
	return func(o *options) { o.nonce = fn }
}

// WithAPIBaseURL injects <meta name="stockroom-api"> so the shell talks to
// the same API as the server was configured with.
func WithAPIBaseURL(u string) Option {
	return func(o *options) { o.apiBase = u }
}

// Handler returns an http.Handler that serves the embedded shell.
//
// Paths registered in table get index.html with a
// <meta name="stockroom-page" content="..."> tag injected before </head>.
// Existing static assets are served as files and "/" serves the bare shell.
// Anything else is a 404.
func Handler(table *routes.Table, opts ...Option) (http.Handler, error) {
	if table == nil {
		return nil, fmt.Errorf("route table is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fsys, err := fs.Sub(content, "dist")
	if err != nil {
		return nil, fmt.Errorf("loading embedded web assets: %w", err)
	}

	indexBytes, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, fmt.Errorf("reading embedded index.html: %w", err)
	}
	indexTemplate := string(indexBytes)

	static := http.FileServer(http.FS(fsys))

	serveIndex := func(w http.ResponseWriter, r *http.Request, page routes.Page) {
		var tags []string
		if page != "" {
			tags = append(tags, metaTag(PageMetaName, string(page)))
		}
		if o.apiBase != "" {
			tags = append(tags, metaTag("stockroom-api", o.apiBase))
		}
		if o.nonce != nil {
			if nonce := o.nonce(r); nonce != "" {
				tags = append(tags, metaTag("csp-nonce", nonce))
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if len(tags) == 0 {
			w.Write(indexBytes)
			return
		}
		inject := strings.Join(tags, "\n    ")
		body := strings.Replace(indexTemplate, "</head>", "  "+inject+"\n  </head>", 1)
		w.Write([]byte(body))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if cleanPath == "." || cleanPath == "" {
			serveIndex(w, r, "")
			return
		}

		if cleanPath != "index.html" {
			if _, err := fs.Stat(fsys, cleanPath); err == nil {
				static.ServeHTTP(w, r)
				return
			}
		}

		if page, ok := table.Resolve(r.URL.Path); ok {
			serveIndex(w, r, page)
			return
		}
		http.NotFound(w, r)
	}), nil
}

func metaTag(name, content string) string {
	return `<meta name="` + name + `" content="` + html.EscapeString(content) + `">`
}
