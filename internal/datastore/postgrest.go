package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PostgREST is a Store over a Supabase-style REST endpoint (/rest/v1).
type PostgREST struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPostgREST creates a client for baseURL authenticated with the service key.
func NewPostgREST(baseURL, apiKey string, timeout time.Duration) *PostgREST {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PostgREST{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *PostgREST) Select(ctx context.Context, table string, q Query, dst any) error {
	params := filterParams(q.Where)
	params.Set("select", "*")
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := ".asc.nullslast"
			if o.Desc {
				dir = ".desc.nullsfirst"
			}
			parts[i] = o.Column + dir
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	data, status, err := p.do(ctx, http.MethodGet, "/"+table, params, nil)
	if err != nil {
		return wrap("select", table, status, err)
	}
	return decodeRows(data, dst)
}

func (p *PostgREST) Insert(ctx context.Context, table string, row Row, dst any) error {
	data, status, err := p.do(ctx, http.MethodPost, "/"+table, nil, row)
	if err != nil {
		return wrap("insert", table, status, err)
	}
	return decodeRows(data, dst)
}

func (p *PostgREST) Update(ctx context.Context, table string, where []Predicate, patch Row, dst any) (int, error) {
	data, status, err := p.do(ctx, http.MethodPatch, "/"+table, filterParams(where), patch)
	if err != nil {
		return 0, wrap("update", table, status, err)
	}
	return countAndDecode(data, dst)
}

func (p *PostgREST) Delete(ctx context.Context, table string, where []Predicate) (int, error) {
	data, status, err := p.do(ctx, http.MethodDelete, "/"+table, filterParams(where), nil)
	if err != nil {
		return 0, wrap("delete", table, status, err)
	}
	return countAndDecode(data, nil)
}

func (p *PostgREST) Call(ctx context.Context, fn string, args Row, dst any) error {
	if args == nil {
		args = Row{}
	}
	data, status, err := p.do(ctx, http.MethodPost, "/rpc/"+fn, nil, args)
	if err != nil {
		return wrap("call", fn, status, err)
	}
	return decodeRows(data, dst)
}

func (p *PostgREST) Ping(ctx context.Context) error {
	_, status, err := p.do(ctx, http.MethodGet, "/", nil, nil)
	return wrap("ping", "", status, err)
}

func (p *PostgREST) Close() { p.httpClient.CloseIdleConnections() }

// do sends one request and returns the body of a successful response.
func (p *PostgREST) do(ctx context.Context, method, endpoint string, params url.Values, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	u := p.baseURL + "/rest/v1" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, restError(respBody)
	}
	return respBody, resp.StatusCode, nil
}

// restError extracts PostgREST's {"code","message"} error body.
func restError(body []byte) error {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		if e.Code != "" {
			return fmt.Errorf("%s: %s", e.Code, e.Message)
		}
		return fmt.Errorf("%s", e.Message)
	}
	return fmt.Errorf("%s", strings.TrimSpace(string(body)))
}

func filterParams(preds []Predicate) url.Values {
	params := url.Values{}
	for _, pr := range preds {
		if pr.Op == OpIs {
			params.Add(pr.Column, "is.null")
			continue
		}
		params.Add(pr.Column, string(pr.Op)+"."+formatValue(pr.Value))
	}
	return params
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func countAndDecode(data []byte, dst any) (int, error) {
	var rows []json.RawMessage
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return 0, err
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows), decodeRows(data, dst)
}
