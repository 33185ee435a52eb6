package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/planrun/planrun/internal/config"
	"github.com/planrun/planrun/internal/registry"
)

// httpCapability exposes "get" and "post" actions backed by a shared resty
// client. 401/403 responses are returned as authentication errors so the
// engine's credential recovery applies to remote HTTP services too.
func httpCapability(cfg config.HTTPConfig, logger *log.Logger) *registry.Capability {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.RetryCount)

	h := &httpService{client: client, log: logger}
	return &registry.Capability{
		Service: "http",
		Actions: map[string]registry.Invocable{
			"get":  registry.InvocableFunc(h.get),
			"post": registry.InvocableFunc(h.post),
		},
	}
}

type httpService struct {
	client *resty.Client
	log    *log.Logger
}

func (h *httpService) get(ctx context.Context, inputs map[string]any) (any, error) {
	url, err := stringInput(inputs, "url")
	if err != nil {
		return nil, err
	}
	req := h.request(ctx, inputs)
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return h.result(resp, "GET", url)
}

func (h *httpService) post(ctx context.Context, inputs map[string]any) (any, error) {
	url, err := stringInput(inputs, "url")
	if err != nil {
		return nil, err
	}
	req := h.request(ctx, inputs)
	if body, ok := inputs["body"]; ok {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	return h.result(resp, "POST", url)
}

func (h *httpService) request(ctx context.Context, inputs map[string]any) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if headers, ok := inputs["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.SetHeader(name, fmt.Sprintf("%v", value))
		}
	}
	return req
}

func (h *httpService) result(resp *resty.Response, method, url string) (any, error) {
	status := resp.StatusCode()
	h.log.Debug("http response", "method", method, "url", url, "status", status)

	switch status {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized: %s %s returned 401", method, url)
	case http.StatusForbidden:
		return nil, fmt.Errorf("access denied: %s %s returned 403", method, url)
	}
	if status >= 400 {
		return nil, fmt.Errorf("%s %s returned %d: %s", method, url, status, resp.String())
	}

	out := map[string]any{"status": status}
	raw := resp.Body()
	var parsed any
	if json.Unmarshal(raw, &parsed) == nil {
		out["body"] = parsed
	} else {
		out["body"] = string(raw)
	}
	return out, nil
}
