package heksher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/biocatchltd/hekshermgmt/internal/config"
	"github.com/biocatchltd/hekshermgmt/internal/constants"
	"github.com/biocatchltd/hekshermgmt/pkg/metrics"
)

// Client is the typed interface to the Heksher rule engine. All mutable state
// lives on the Heksher side; this client is safe for concurrent use and is
// shared by all requests for the lifetime of the process.
type Client interface {
	Ping(ctx context.Context) error
	GetSettings(ctx context.Context) ([]Setting, error)
	GetRules(ctx context.Context, settingNames []string) (map[string][]Rule, error)
	GetRulesForSetting(ctx context.Context, settingName string) ([]Rule, error)
	GetRule(ctx context.Context, ruleID int) (*RuleData, error)
	AddRule(ctx context.Context, setting string, featureValues map[string]string, value interface{}, metadata map[string]interface{}) (int, error)
	EditRuleValue(ctx context.Context, ruleID int, value interface{}) error
	UpdateRuleMetadata(ctx context.Context, ruleID int, metadata map[string]interface{}) error
	DeleteRule(ctx context.Context, ruleID int) error
	GetContextFeatures(ctx context.Context) ([]string, error)
	Close()
}

type HTTPClient struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

type Option func(*HTTPClient)

// WithTransport overrides the HTTP transport, e.g. to add tracing.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.client.Transport = rt
	}
}

func NewClient(cfg config.HeksherConfig, opts ...Option) *HTTPClient {
	timeout := cfg.TimeoutSeconds * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		headers: cfg.Headers,
		client: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/api/health", nil, nil)
}

func (c *HTTPClient) GetSettings(ctx context.Context) ([]Setting, error) {
	var resp settingsResponse
	if err := c.do(ctx, "get_settings", http.MethodGet, "/api/v1/settings?include_additional_data=true", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

func (c *HTTPClient) GetRules(ctx context.Context, settingNames []string) (map[string][]Rule, error) {
	req := rulesQueryRequest{
		SettingNames:           settingNames,
		ContextFeaturesOptions: "*",
		IncludeMetadata:        true,
	}
	var resp rulesQueryResponse
	if err := c.do(ctx, "query_rules", http.MethodPost, "/api/v1/rules/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

func (c *HTTPClient) GetRulesForSetting(ctx context.Context, settingName string) ([]Rule, error) {
	rules, err := c.GetRules(ctx, []string{settingName})
	if err != nil {
		return nil, err
	}
	settingRules, ok := rules[settingName]
	if !ok {
		return nil, fmt.Errorf("setting %q missing from rules query response", settingName)
	}
	return settingRules, nil
}

func (c *HTTPClient) GetRule(ctx context.Context, ruleID int) (*RuleData, error) {
	var rule RuleData
	if err := c.do(ctx, "get_rule", http.MethodGet, fmt.Sprintf("/api/v1/rules/%d", ruleID), nil, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// AddRule creates a rule and returns the id Heksher assigned to it, parsed
// from the rule_id field of the response body.
func (c *HTTPClient) AddRule(ctx context.Context, setting string, featureValues map[string]string, value interface{}, metadata map[string]interface{}) (int, error) {
	req := addRuleRequest{
		Setting:       setting,
		FeatureValues: featureValues,
		Value:         value,
		Metadata:      metadata,
	}
	var resp addRuleResponse
	if err := c.do(ctx, "add_rule", http.MethodPost, "/api/v1/rules", req, &resp); err != nil {
		return 0, err
	}
	return resp.RuleID, nil
}

func (c *HTTPClient) EditRuleValue(ctx context.Context, ruleID int, value interface{}) error {
	req := editRuleValueRequest{Value: value}
	return c.do(ctx, "edit_rule_value", http.MethodPut, fmt.Sprintf("/api/v1/rules/%d/value", ruleID), req, nil)
}

func (c *HTTPClient) UpdateRuleMetadata(ctx context.Context, ruleID int, metadata map[string]interface{}) error {
	req := updateMetadataRequest{Metadata: metadata}
	return c.do(ctx, "update_rule_metadata", http.MethodPost, fmt.Sprintf("/api/v1/rules/%d/metadata", ruleID), req, nil)
}

func (c *HTTPClient) DeleteRule(ctx context.Context, ruleID int) error {
	return c.do(ctx, "delete_rule", http.MethodDelete, fmt.Sprintf("/api/v1/rules/%d", ruleID), nil, nil)
}

func (c *HTTPClient) GetContextFeatures(ctx context.Context) ([]string, error) {
	var resp contextFeaturesResponse
	if err := c.do(ctx, "get_context_features", http.MethodGet, "/api/v1/context_features", nil, &resp); err != nil {
		return nil, err
	}
	return resp.ContextFeatures, nil
}

func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}

// do performs a single request. No retries: mutations must reach Heksher at
// most once per management request.
func (c *HTTPClient) do(ctx context.Context, operation, method, path string, reqBody, respBody interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveHeksherRequest(operation, "network_error", time.Since(start))
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		metrics.ObserveHeksherRequest(operation, "error", time.Since(start))
		return &StatusError{
			Operation:   operation,
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}
	}

	metrics.ObserveHeksherRequest(operation, "ok", time.Since(start))

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", operation, err)
		}
	}
	return nil
}
