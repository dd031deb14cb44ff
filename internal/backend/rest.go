package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/recipebox/internal/shared"
)

// RESTOptions configures a [RESTTable].
type RESTOptions struct {
	// BaseURL is the project URL; tables live under /rest/v1.
	BaseURL string
	// AnonKey is sent as the apikey header on every request.
	AnonKey string
	// Tokens supplies the bearer token. Defaults to the anon key.
	Tokens oauth2.TokenSource
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
	Timeout   time.Duration
	// Transport is the base round tripper. Defaults to [http.DefaultTransport].
	Transport http.RoundTripper
	Logger    *log.Logger
}

// RESTTable implements [Table] against a PostgREST endpoint such as a Supabase project.
type RESTTable[T any] struct {
	schema   Schema[T]
	endpoint string
	anonKey  string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewRESTTable creates a [RESTTable] for schema.
func NewRESTTable[T any](schema Schema[T], opts RESTOptions) *RESTTable[T] {
	tokens := opts.Tokens
	if tokens == nil {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AnonKey, TokenType: "Bearer"})
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &RESTTable[T]{
		schema:   schema,
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/rest/v1/" + schema.Table,
		anonKey:  opts.AnonKey,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: opts.Transport},
		},
		limiter: limiter,
		logger:  shared.WithLogger(logger, "table", schema.Table),
	}
}

func (t *RESTTable[T]) Select(ctx context.Context, q Query) ([]*T, error) {
	if err := t.schema.validate(q.Filters, q.Order, nil); err != nil {
		return nil, newError("select", t.schema.Table, err)
	}

	params, err := restParams(q.Filters)
	if err != nil {
		return nil, newError("select", t.schema.Table, err)
	}
	params.Set("select", strings.Join(t.schema.Columns, ","))
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprint(q.Limit))
	}

	results := []*T{}
	if err := t.do(ctx, "select", http.MethodGet, params, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (t *RESTTable[T]) Insert(ctx context.Context, values Values) (*T, error) {
	if err := t.schema.validate(nil, nil, values); err != nil {
		return nil, newError("insert", t.schema.Table, err)
	}

	params := url.Values{"select": {strings.Join(t.schema.Columns, ",")}}
	var results []*T
	if err := t.do(ctx, "insert", http.MethodPost, params, values, &results); err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, &Error{Op: "insert", Table: t.schema.Table, Message: fmt.Sprintf("expected 1 row, got %d", len(results))}
	}
	return results[0], nil
}

func (t *RESTTable[T]) Update(ctx context.Context, filters []Filter, values Values) ([]*T, error) {
	if len(filters) == 0 {
		return nil, newError("update", t.schema.Table, fmt.Errorf("%w: update without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}
	if err := t.schema.checkMutable(values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}

	params, err := restParams(filters)
	if err != nil {
		return nil, newError("update", t.schema.Table, err)
	}
	params.Set("select", strings.Join(t.schema.Columns, ","))

	results := []*T{}
	if err := t.do(ctx, "update", http.MethodPatch, params, values, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Delete asks for the removed rows back so the count reflects what was actually deleted.
func (t *RESTTable[T]) Delete(ctx context.Context, filters []Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, newError("delete", t.schema.Table, fmt.Errorf("%w: delete without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, nil); err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}

	params, err := restParams(filters)
	if err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}
	params.Set("select", t.schema.Columns[0])

	var removed []json.RawMessage
	if err := t.do(ctx, "delete", http.MethodDelete, params, nil, &removed); err != nil {
		return 0, err
	}
	return int64(len(removed)), nil
}

// restError is the PostgREST error body.
type restError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (t *RESTTable[T]) do(ctx context.Context, op, method string, params url.Values, body any, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Table: t.schema.Table, Message: "request cancelled", Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(op, t.schema.Table, fmt.Errorf("failed to encode body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	fullURL := t.endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return newError(op, t.schema.Table, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("apikey", t.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	t.logger.Debug("request", "method", method, "url", fullURL)

	resp, err := t.client.Do(req)
	if err != nil {
		return &Error{Op: op, Table: t.schema.Table, Message: "request failed", Err: fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(op, t.schema.Table, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return t.statusError(op, resp.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(op, t.schema.Table, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (t *RESTTable[T]) statusError(op string, status int, body []byte) *Error {
	be := &Error{
		Op:      op,
		Table:   t.schema.Table,
		Message: http.StatusText(status),
		Err:     fmt.Errorf("unexpected status %d", status),
	}

	var re restError
	if err := json.Unmarshal(body, &re); err == nil && re.Message != "" {
		be.Message = re.Message
		be.Code = re.Code
		if re.Hint != "" {
			be.Message += ": " + re.Hint
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		be.Err = fmt.Errorf("%w: status %d", shared.ErrAuthFailed, status)
	case status >= 500:
		be.Err = fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, status)
	}
	return be
}

// restParams renders filters as PostgREST query parameters.
func restParams(filters []Filter) (url.Values, error) {
	params := url.Values{}
	for _, f := range filters {
		switch f := f.(type) {
		case Or:
			parts := make([]string, 0, len(f))
			for _, inner := range f {
				expr, err := restExpr(inner, true)
				if err != nil {
					return nil, err
				}
				parts = append(parts, expr)
			}
			params.Add("or", "("+strings.Join(parts, ",")+")")
		default:
			expr, err := restExpr(f, false)
			if err != nil {
				return nil, err
			}
			col, cond, _ := strings.Cut(expr, ".")
			params.Add(col, cond)
		}
	}
	return params, nil
}

// restExpr renders "column.op.value". Values inside logical groups are quoted.
func restExpr(f Filter, grouped bool) (string, error) {
	value := func(s string) string {
		if !grouped {
			return s
		}
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
	}

	switch f := f.(type) {
	case Eq:
		if f.Value == nil {
			return f.Column + ".is.null", nil
		}
		return f.Column + ".eq." + value(restValue(f.Value)), nil
	case ILike:
		return f.Column + ".ilike." + value(restPattern(f.Pattern)), nil
	default:
		return "", fmt.Errorf("%w: unsupported filter %T in request", ErrInvalidQuery, f)
	}
}

func restValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// restPattern rewrites unescaped "%" wildcards as "*", which PostgREST expects in URLs.
func restPattern(p string) string {
	var sb strings.Builder
	escaped := false
	for _, r := range p {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteRune('*')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
