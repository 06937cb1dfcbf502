package resource

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/stockroom/client"
	"github.com/jmcleod/stockroom/storage"
	"github.com/jmcleod/stockroom/storage/memory"
)

type fakeSuppliers struct {
	mu      sync.Mutex
	records map[string]Record
	queries []string
}

func newServer(t *testing.T, paginated bool) (*httptest.Server, *fakeSuppliers) {
	t.Helper()
	f := &fakeSuppliers{records: map[string]Record{
		"1": {"id": "1", "name": "Acme Textiles"},
	}}

	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/suppliers/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.queries = append(f.queries, r.URL.RawQuery)
		var list []Record
		for _, rec := range f.records {
			list = append(list, rec)
		}
		if paginated {
			write(w, http.StatusOK, map[string]any{"count": len(list), "results": list})
			return
		}
		write(w, http.StatusOK, list)
	})
	r.Post("/api/suppliers/", func(w http.ResponseWriter, r *http.Request) {
		var rec Record
		json.NewDecoder(r.Body).Decode(&rec)
		f.mu.Lock()
		rec["id"] = "2"
		f.records["2"] = rec
		f.mu.Unlock()
		write(w, http.StatusCreated, rec)
	})
	r.Get("/api/suppliers/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		rec, ok := f.records[chi.URLParam(r, "id")]
		f.mu.Unlock()
		if !ok {
			write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		write(w, http.StatusOK, rec)
	})
	r.Put("/api/suppliers/{id}/", func(w http.ResponseWriter, r *http.Request) {
		var rec Record
		json.NewDecoder(r.Body).Decode(&rec)
		id := chi.URLParam(r, "id")
		rec["id"] = id
		f.mu.Lock()
		f.records[id] = rec
		f.mu.Unlock()
		write(w, http.StatusOK, rec)
	})
	r.Patch("/api/suppliers/{id}/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var fields Record
		json.Unmarshal(body, &fields)
		id := chi.URLParam(r, "id")
		f.mu.Lock()
		rec := f.records[id]
		for k, v := range fields {
			rec[k] = v
		}
		f.mu.Unlock()
		write(w, http.StatusOK, rec)
	})
	r.Delete("/api/suppliers/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.records, chi.URLParam(r, "id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, f
}

func newCollection(t *testing.T, srv *httptest.Server) *Collection {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Set(storage.AccessTokenKey, "tok"))
	c, err := client.New(store,
		client.WithBaseURL(srv.URL+"/api/"),
		client.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	return New(c, Suppliers)
}

func TestCollection_CRUD(t *testing.T) {
	srv, f := newServer(t, false)
	col := newCollection(t, srv)
	ctx := t.Context()

	list, err := col.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme Textiles", list[0]["name"])

	created, err := col.Create(ctx, Record{"name": "Bolt & Co"})
	require.NoError(t, err)
	assert.Equal(t, "2", created["id"])

	got, err := col.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Bolt & Co", got["name"])

	updated, err := col.Update(ctx, "2", Record{"name": "Bolt and Co"})
	require.NoError(t, err)
	assert.Equal(t, "Bolt and Co", updated["name"])

	patched, err := col.Patch(ctx, "2", Record{"phone": "555"})
	require.NoError(t, err)
	assert.Equal(t, "555", patched["phone"])
	assert.Equal(t, "Bolt and Co", patched["name"])

	require.NoError(t, col.Delete(ctx, "2"))
	f.mu.Lock()
	_, exists := f.records["2"]
	f.mu.Unlock()
	assert.False(t, exists)
}

func TestCollection_ListPaginatedWithQuery(t *testing.T) {
	srv, f := newServer(t, true)
	col := newCollection(t, srv)

	list, err := col.List(t.Context(), url.Values{"search": {"acme"}})
	require.NoError(t, err)
	require.Len(t, list, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"search=acme"}, f.queries)
}

func TestCollection_Errors(t *testing.T) {
	srv, _ := newServer(t, false)
	col := newCollection(t, srv)

	_, err := col.Get(t.Context(), "404")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, client.StatusCode(err))

	_, err = col.Get(t.Context(), "")
	assert.Error(t, err)
	assert.Error(t, col.Delete(t.Context(), ""))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(Products))
	assert.True(t, Known(Invoices))
	assert.False(t, Known("widgets"))
	assert.Equal(t, "stock-items", New(nil, "/stock-items/").Name())
}

func TestCollection_ListAllFollowsNext(t *testing.T) {
	var srv *httptest.Server
	r := chi.NewRouter()
	r.Get("/api/colors/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		page := r.URL.Query().Get("page")
		body := map[string]any{"count": 3}
		switch page {
		case "":
			body["results"] = []Record{{"name": "Red"}}
			body["next"] = srv.URL + "/api/colors/?page=2"
		case "2":
			body["results"] = []Record{{"name": "Green"}}
			body["next"] = srv.URL + "/api/colors/?page=3"
		default:
			body["results"] = []Record{{"name": "Blue"}}
			body["next"] = nil
		}
		json.NewEncoder(w).Encode(body)
	})
	srv = httptest.NewServer(r)
	t.Cleanup(srv.Close)

	col := newCollection(t, srv)
	col.name = Colors

	first, err := col.ListPage(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Count)
	assert.Len(t, first.Results, 1)
	assert.Contains(t, first.Next, "page=2")

	all, err := col.ListAll(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Red", all[0]["name"])
	assert.Equal(t, "Blue", all[2]["name"])
}

func TestCollection_ListAllUnpaginated(t *testing.T) {
	srv, _ := newServer(t, false)
	col := newCollection(t, srv)

	all, err := col.ListAll(t.Context(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
