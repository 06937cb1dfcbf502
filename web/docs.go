package web

import (
	_ "embed"
	"net/http"

	"github.com/go-openapi/runtime/middleware"
)

//go:embed openapi.yaml
var openapiSpec []byte

// OpenAPISpec returns the embedded OpenAPI document of the inventory API.
func OpenAPISpec() []byte {
	return openapiSpec
}

// DocsHandler serves the OpenAPI document at /openapi.yaml and a Redoc
// reference page at /docs. Other paths fall through to next, or 404 when next
// is nil.
func DocsHandler(next http.Handler) http.Handler {
	spec := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	redoc := middleware.Redoc(middleware.RedocOpts{
		BasePath: "/",
		Path:     "docs",
		SpecURL:  "/openapi.yaml",
		Title:    "Stockroom API",
	}, next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/openapi.yaml" {
			spec.ServeHTTP(w, r)
			return
		}
		redoc.ServeHTTP(w, r)
	})
}
