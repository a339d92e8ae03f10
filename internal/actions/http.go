package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

// HTTPAction performs a single request and checks the response.
type HTTPAction struct {
	defaultTimeout time.Duration
}

func NewHTTPAction(timeout time.Duration) *HTTPAction {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAction{defaultTimeout: timeout}
}

func (a *HTTPAction) Name() string {
	return "http"
}

func (a *HTTPAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	url, err := reqString(args, "url")
	if err != nil {
		return err
	}
	method, hasMethod, err := optString(args, "method")
	if err != nil {
		return err
	}
	if !hasMethod {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	headers, _, err := optStringMap(args, "headers")
	if err != nil {
		return err
	}
	timeout, hasTimeout, err := optDuration(args, "timeout")
	if err != nil {
		return err
	}
	if !hasTimeout {
		timeout = a.defaultTimeout
	}
	expectStatus, hasStatus, err := optInt(args, "expect_status")
	if err != nil {
		return err
	}
	expectContains, hasContains, err := optString(args, "expect_contains")
	if err != nil {
		return err
	}
	expectNotContains, hasNotContains, err := optString(args, "expect_not_contains")
	if err != nil {
		return err
	}
	saveBody, hasSave, err := optString(args, "save_body")
	if err != nil {
		return err
	}

	var reqBody io.Reader
	contentType := ""
	if raw, ok := args["body"]; ok && raw != nil {
		switch b := raw.(type) {
		case string:
			reqBody = strings.NewReader(b)
		default:
			encoded, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("body: %w", err)
			}
			reqBody = strings.NewReader(string(encoded))
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	logging.Debug("actions", "Sending %s %s", method, url)
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", url, err)
	}

	if hasStatus {
		if resp.StatusCode != expectStatus {
			return fmt.Errorf("%s %s returned %d, expected %d", method, url, resp.StatusCode, expectStatus)
		}
	} else if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d", method, url, resp.StatusCode)
	}

	text := string(body)
	if hasContains && !strings.Contains(text, expectContains) {
		return fmt.Errorf("response from %s does not contain %q", url, expectContains)
	}
	if hasNotContains && strings.Contains(text, expectNotContains) {
		return fmt.Errorf("response from %s contains %q", url, expectNotContains)
	}

	if hasSave {
		scope.Set(saveBody, text)
	}
	return nil
}
