// Package resource provides JSON CRUD access to the inventory API's
// collections through an authenticated client.Client.
package resource

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmcleod/stockroom/client"
)

// Collection names exposed by the inventory API.
const (
	Products        = "products"
	ProductVariants = "product-variants"
	Colors          = "colors"
	Sizes           = "sizes"
	StockItems      = "stock-items"
	StockMovements  = "stock-movements"
	Suppliers       = "suppliers"
	Customers       = "customers"
	Invoices        = "invoices"
	AuditLogs       = "audit-logs"
)

// Names lists every known collection.
var Names = []string{
	Products, ProductVariants, Colors, Sizes, StockItems,
	StockMovements, Suppliers, Customers, Invoices, AuditLogs,
}

// Known reports whether name is one of Names.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Record is one JSON object of a collection.
type Record map[string]any

// Collection addresses <name>/ and <name>/<id>/ on the API.
type Collection struct {
	c    *client.Client
	name string
}

// New returns the collection called name.
func New(c *client.Client, name string) *Collection {
	return &Collection{c: c, name: strings.Trim(name, "/")}
}

// Name returns the collection name.
func (col *Collection) Name() string { return col.name }

func (col *Collection) path() string {
	return col.name + "/"
}

func (col *Collection) itemPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s: empty id", col.name)
	}
	return col.name + "/" + url.PathEscape(id) + "/", nil
}

// Page is one response of a listing. Unpaginated responses come back as a
// single page with an empty Next.
type Page struct {
	Count    int      `json:"count"`
	Next     string   `json:"next"`
	Previous string   `json:"previous"`
	Results  []Record `json:"results"`
}

// maxPages bounds ListAll against a server that never stops linking.
const maxPages = 1000

// List fetches the collection. Both bare arrays and paginated
// {"results": [...]} envelopes are accepted. query may be nil.
func (col *Collection) List(ctx context.Context, query url.Values) ([]Record, error) {
	page, err := col.ListPage(ctx, query)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ListPage fetches the first page of the collection.
func (col *Collection) ListPage(ctx context.Context, query url.Values) (*Page, error) {
	p := col.path()
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	return col.fetch(ctx, p)
}

// ListAll follows next links until the last page and returns every record.
func (col *Collection) ListAll(ctx context.Context, query url.Values) ([]Record, error) {
	page, err := col.ListPage(ctx, query)
	if err != nil {
		return nil, err
	}
	records := page.Results
	for n := 1; page.Next != ""; n++ {
		if n >= maxPages {
			return nil, fmt.Errorf("listing %s: more than %d pages", col.name, maxPages)
		}
		if page, err = col.fetch(ctx, page.Next); err != nil {
			return nil, err
		}
		records = append(records, page.Results...)
	}
	return records, nil
}

func (col *Collection) fetch(ctx context.Context, p string) (*Page, error) {
	resp, err := col.c.Issue(ctx, &client.Request{Path: p})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", col.name, err)
	}
	body := strings.TrimSpace(string(resp.Body))
	if strings.HasPrefix(body, "{") {
		var page Page
		if err := resp.Decode(&page); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", col.name, err)
		}
		return &page, nil
	}
	var records []Record
	if err := resp.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", col.name, err)
	}
	return &Page{Count: len(records), Results: records}, nil
}

// Get fetches one record.
func (col *Collection) Get(ctx context.Context, id string) (Record, error) {
	p, err := col.itemPath(id)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := col.c.Get(ctx, p, &rec); err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", col.name, id, err)
	}
	return rec, nil
}

// Create posts rec and returns the stored record.
func (col *Collection) Create(ctx context.Context, rec Record) (Record, error) {
	var out Record
	if err := col.c.Post(ctx, col.path(), rec, &out); err != nil {
		return nil, fmt.Errorf("creating %s: %w", col.name, err)
	}
	return out, nil
}

// Update replaces the record with id.
func (col *Collection) Update(ctx context.Context, id string, rec Record) (Record, error) {
	p, err := col.itemPath(id)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := col.c.Put(ctx, p, rec, &out); err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", col.name, id, err)
	}
	return out, nil
}

// Patch applies a partial update to the record with id.
func (col *Collection) Patch(ctx context.Context, id string, fields Record) (Record, error) {
	p, err := col.itemPath(id)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := col.c.Patch(ctx, p, fields, &out); err != nil {
		return nil, fmt.Errorf("patching %s %s: %w", col.name, id, err)
	}
	return out, nil
}

// Delete removes the record with id.
func (col *Collection) Delete(ctx context.Context, id string) error {
	p, err := col.itemPath(id)
	if err != nil {
		return err
	}
	if err := col.c.Delete(ctx, p); err != nil {
		return fmt.Errorf("deleting %s %s: %w", col.name, id, err)
	}
	return nil
}
