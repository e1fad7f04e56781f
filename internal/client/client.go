// Package client provides HTTP clients for the remote Plan Service and
// Finance Service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "echoplan/internal/errors"
)

// base carries what every remote client shares.
type base struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newBase(baseURL, apiKey string, httpClient *http.Client) base {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return base{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// errorBody is the error envelope returned by the remote services.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses are translated into AppErrors; notFound is used for 404s.
func (b *base) do(ctx context.Context, method, path string, body, out any, notFound *apperrors.AppError) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("marshaling request: %w", err))
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("creating request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if b.apiKey != "" {
		req.Header.Set("X-API-Key", b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, notFound)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("decoding %s %s response: %w", method, path, err))
	}
	return nil
}

// statusError maps a failed response onto the error taxonomy.
func statusError(resp *http.Response, notFound *apperrors.AppError) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error.Message

	withMsg := func(sentinel *apperrors.AppError) *apperrors.AppError {
		if msg == "" {
			return sentinel
		}
		return apperrors.WithMessage(sentinel, msg)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if notFound == nil {
			notFound = apperrors.ErrNotFound
		}
		return withMsg(notFound)
	case resp.StatusCode == http.StatusConflict:
		return withMsg(apperrors.ErrPeriodConflict)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return withMsg(apperrors.ErrValidation)
	case resp.StatusCode >= 500:
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(firstNonEmpty(msg, string(raw)))))
	default:
		return apperrors.Wrap(apperrors.ErrInternal,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(firstNonEmpty(msg, string(raw)))))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
