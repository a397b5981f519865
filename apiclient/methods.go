package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Send(ctx, NewRequest(http.MethodGet, path).WithQuery(query))
}

// Post sends a raw body, e.g. a multipart form forwarded from the browser.
func (c *Client) Post(ctx context.Context, path, contentType string, body []byte) (*Response, error) {
	req := NewRequest(http.MethodPost, path)
	req.Body = body
	req.ContentType = contentType
	return c.Send(ctx, req)
}

func (c *Client) PostJSON(ctx context.Context, path string, payload any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, payload)
}

func (c *Client) PutJSON(ctx context.Context, path string, payload any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, payload)
}

func (c *Client) PatchJSON(ctx context.Context, path string, payload any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPatch, path, payload)
}

// Delete sends an optional JSON payload; some endpoints take the id in the body.
func (c *Client) Delete(ctx context.Context, path string, payload any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodDelete, path, payload)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*Response, error) {
	req, err := NewJSONRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}
