// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

// wireTimeFormat is the canonical timestamp format of the backend wire
// protocol: millisecond precision, always UTC.
const wireTimeFormat = "2006-01-02T15:04:05.000Z"

type httpFetcher struct {
	client    *resty.Client
	appKey    string
	appSecret string

	mu    sync.RWMutex
	token string
}

var _ Fetcher = (*httpFetcher)(nil)

// NewHTTPFetcher builds the REST fetcher for the app described by cfg.
// Entity endpoints live under /appdata/{appKey}/{collection}.
func NewHTTPFetcher(cfg config.App) Fetcher {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout)

	return &httpFetcher{client: cli, appKey: cfg.AppKey, appSecret: cfg.AppSecret}
}

func (h *httpFetcher) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpFetcher) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpFetcher) Find(ctx context.Context, collection string, q query.Translated) ([]json.RawMessage, error) {
	req := h.authedRequest(ctx)
	applyQuery(req, q)

	resp, err := req.Get(h.collectionPath(collection))
	if err != nil {
		return nil, &NetworkError{Op: "find", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var docs []json.RawMessage
	if err = json.Unmarshal(resp.Body(), &docs); err != nil {
		return nil, fmt.Errorf("decode find response: %w", err)
	}
	return docs, nil
}

func (h *httpFetcher) FindByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).Get(h.entityPath(collection, id))
	if err != nil {
		return nil, &NetworkError{Op: "find by id", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpFetcher) FindDelta(ctx context.Context, collection string, q query.Translated, since time.Time) (models.DeltaSetResponse, error) {
	req := h.authedRequest(ctx).
		SetQueryParam("since", since.UTC().Format(wireTimeFormat))
	applyQuery(req, q)

	resp, err := req.Get(h.collectionPath(collection) + "/_deltaset")
	if err != nil {
		return models.DeltaSetResponse{}, &NetworkError{Op: "find delta", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DeltaSetResponse{}, err
	}

	var delta models.DeltaSetResponse
	if err = json.Unmarshal(resp.Body(), &delta); err != nil {
		return models.DeltaSetResponse{}, fmt.Errorf("decode delta response: %w", err)
	}
	return delta, nil
}

func (h *httpFetcher) Create(ctx context.Context, collection string, payload json.RawMessage) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Post(h.collectionPath(collection))
	if err != nil {
		return nil, &NetworkError{Op: "create", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpFetcher) Update(ctx context.Context, collection, id string, payload json.RawMessage) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Put(h.entityPath(collection, id))
	if err != nil {
		return nil, &NetworkError{Op: "update", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpFetcher) Delete(ctx context.Context, collection, id string) (int, error) {
	resp, err := h.authedRequest(ctx).Delete(h.entityPath(collection, id))
	if err != nil {
		return 0, &NetworkError{Op: "delete", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var result struct {
		Count int `json:"count"`
	}
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode delete response: %w", err)
	}
	return result.Count, nil
}

func (h *httpFetcher) Count(ctx context.Context, collection string, q query.Translated) (int, error) {
	req := h.authedRequest(ctx)
	applyQuery(req, q)

	resp, err := req.Get(h.collectionPath(collection) + "/_count")
	if err != nil {
		return 0, &NetworkError{Op: "count", Err: err}
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var result struct {
		Count int `json:"count"`
	}
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return result.Count, nil
}

func (h *httpFetcher) collectionPath(collection string) string {
	return "/appdata/" + h.appKey + "/" + collection
}

func (h *httpFetcher) entityPath(collection, id string) string {
	return h.collectionPath(collection) + "/" + id
}

func (h *httpFetcher) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	} else {
		req.SetBasicAuth(h.appKey, h.appSecret)
	}
	return req
}

// applyQuery turns the translated wire format into URL parameters: the
// filter under "query" and each `&name=value` modifier under its own name.
func applyQuery(req *resty.Request, q query.Translated) {
	if q.Filter != "" && q.Filter != "{}" {
		req.SetQueryParam("query", q.Filter)
	}
	for _, mod := range q.Modifiers {
		name, value, ok := strings.Cut(strings.TrimPrefix(mod, "&"), "=")
		if ok && name != "" {
			req.SetQueryParam(name, value)
		}
	}
}
