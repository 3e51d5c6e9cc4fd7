package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
)

// HTTP is a proxy for the record API's REST routes:
//
//	GET    {base}/collections/{collection}/records
//	POST   {base}/collections/{collection}/records
//	PUT    {base}/collections/{collection}/records
//	DELETE {base}/collections/{collection}/records?id=1&id=2
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP creates a proxy for the API rooted at base. A nil client uses
// http.DefaultClient.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: strings.TrimRight(base, "/"), client: client}
}

// Name implements collection.Proxy.
func (h *HTTP) Name() string { return "http" }

// Do implements collection.Proxy.
func (h *HTTP) Do(ctx context.Context, req collection.Request) (*collection.Response, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/records", h.base, url.PathEscape(req.Collection))

	var (
		method string
		body   io.Reader
	)
	switch req.Action {
	case collection.ActionRead:
		method = http.MethodGet
	case collection.ActionCreate, collection.ActionUpdate:
		method = http.MethodPost
		if req.Action == collection.ActionUpdate {
			method = http.MethodPut
		}
		payload, err := json.Marshal(recordsBody{Records: req.Records})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	case collection.ActionDestroy:
		method = http.MethodDelete
		q := url.Values{}
		for _, p := range req.Records {
			q.Add("id", p.ID)
		}
		endpoint += "?" + q.Encode()
	default:
		return nil, fmt.Errorf("http proxy: unknown action %q", req.Action)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var resp collection.Response
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("http proxy: %s %s: status %d: %w", method, endpoint, res.StatusCode, err)
	}
	if res.StatusCode >= 400 && resp.Success {
		resp.Success = false
	}
	if !resp.Success && resp.Message == "" {
		resp.Message = http.StatusText(res.StatusCode)
	}
	return &resp, nil
}

// recordsBody is the request body for create and update.
type recordsBody struct {
	Records []record.Payload `json:"records"`
}
