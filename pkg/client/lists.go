package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Page is one page of a paginated list response.
type Page struct {
	Items []map[string]any `json:"items"`
	Pages int              `json:"pages"`
	Total int              `json:"total,omitempty"`
}

// Options fetches endpoint and decodes it as an option list.
func (c *Client) Options(ctx context.Context, endpoint string) ([]schema.Option, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	return DecodeOptions(raw)
}

// List fetches one page of a paginated endpoint.
func (c *Client) List(ctx context.Context, path string) (Page, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, &raw); err != nil {
		return Page{}, err
	}
	return DecodePage(raw)
}

// DecodeOptions accepts [{id, nombre}] or a page {items:[...]} and returns
// options with string ids.
func DecodeOptions(data []byte) ([]schema.Option, error) {
	var opts []schema.Option
	if err := json.Unmarshal(data, &opts); err == nil {
		return opts, nil
	}
	var page struct {
		Items []schema.Option `json:"items"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("client: decode options: %w", err)
	}
	if page.Items == nil {
		return []schema.Option{}, nil
	}
	return page.Items, nil
}

// DecodePage accepts {items, pages} or a bare list, which is treated as a
// single page.
func DecodePage(data []byte) (Page, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err == nil {
		return Page{Items: items, Pages: 1, Total: len(items)}, nil
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return Page{}, fmt.Errorf("client: decode page: %w", err)
	}
	if page.Pages < 1 {
		page.Pages = 1
	}
	return page, nil
}
