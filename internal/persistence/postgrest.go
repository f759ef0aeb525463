package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestError is the error body PostgREST returns for rejected writes.
type RequestError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest returned status %d: %s", e.StatusCode, e.Message)
}

// PostgRESTDatastore talks to a Supabase project's REST endpoint with the
// service role key.
type PostgRESTDatastore struct {
	baseURL    string
	serviceKey string
	client     *fasthttp.Client
}

func NewPostgRESTDatastore(baseURL, serviceKey string) *PostgRESTDatastore {
	return &PostgRESTDatastore{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     50,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

func (p *PostgRESTDatastore) Update(ctx context.Context, table string, match Match, fields Fields) error {
	if len(fields) == 0 {
		return fmt.Errorf("[persistence] %s: %w", table, ErrEmptyUpdate)
	}
	query := url.Values{}
	query.Set(match.Column, "eq."+match.Value)
	uri := fmt.Sprintf("%s/rest/v1/%s?%s", p.baseURL, url.PathEscape(table), query.Encode())

	if err := p.send(ctx, fasthttp.MethodPatch, uri, fields); err != nil {
		return fmt.Errorf("[persistence] failed to update %s: %w", table, err)
	}
	return nil
}

func (p *PostgRESTDatastore) Insert(ctx context.Context, table string, fields Fields) error {
	if len(fields) == 0 {
		return fmt.Errorf("[persistence] %s: %w", table, ErrEmptyUpdate)
	}
	uri := fmt.Sprintf("%s/rest/v1/%s", p.baseURL, url.PathEscape(table))

	if err := p.send(ctx, fasthttp.MethodPost, uri, fields); err != nil {
		return fmt.Errorf("[persistence] failed to insert into %s: %w", table, err)
	}
	return nil
}

// Ping hits the REST root, which answers with the OpenAPI description when the
// key is accepted.
func (p *PostgRESTDatastore) Ping(ctx context.Context) error {
	if err := p.send(ctx, fasthttp.MethodGet, p.baseURL+"/rest/v1/", nil); err != nil {
		return fmt.Errorf("[persistence] failed to ping postgrest: %w", err)
	}
	return nil
}

func (p *PostgRESTDatastore) Close() {
	p.client.CloseIdleConnections()
}

func (p *PostgRESTDatastore) send(ctx context.Context, method, uri string, body Fields) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.Set("apikey", p.serviceKey)
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)
	req.Header.Set("Prefer", "return=minimal")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = p.client.DoDeadline(req, resp, deadline)
	} else {
		err = p.client.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}
	reqErr := &RequestError{StatusCode: status}
	if uerr := json.Unmarshal(resp.Body(), reqErr); uerr != nil || reqErr.Message == "" {
		reqErr.Message = string(resp.Body())
	}
	return reqErr
}
