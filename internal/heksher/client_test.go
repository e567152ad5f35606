package heksher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biocatchltd/hekshermgmt/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.HeksherConfig{
		URL:            server.URL,
		Headers:        map[string]string{"Authorization": "Bearer test-token"},
		TimeoutSeconds: 5,
	})
}

func TestHTTPClient_Ping(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/health", gotPath)
}

func TestHTTPClient_Ping_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(config.HeksherConfig{URL: server.URL, TimeoutSeconds: 1})
	err := client.Ping(context.Background())
	assert.Error(t, err)
}

func TestHTTPClient_GetSettings(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/settings", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_additional_data"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"settings": []map[string]interface{}{
				{
					"name":                  "cache_ttl",
					"configurable_features": []string{"user", "env"},
					"type":                  "int",
					"default_value":         5,
					"metadata":              map[string]interface{}{"description": "cache time to live"},
				},
			},
		})
	}))

	settings, err := client.GetSettings(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "cache_ttl", settings[0].Name)
	assert.Equal(t, []string{"user", "env"}, settings[0].ConfigurableFeatures)
	assert.Equal(t, "int", settings[0].Type)
	assert.Equal(t, "cache time to live", settings[0].Metadata["description"])
}

func TestHTTPClient_GetRules(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/rules/query", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []interface{}{"cache_ttl"}, req["setting_names"])
		assert.Equal(t, "*", req["context_features_options"])
		assert.Equal(t, true, req["include_metadata"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"rules": map[string]interface{}{
				"cache_ttl": []map[string]interface{}{
					{
						"rule_id":          17,
						"value":            30,
						"context_features": map[string]string{"user": "alice"},
						"metadata":         map[string]interface{}{"added_by": "alice@example.com"},
					},
				},
			},
		})
	}))

	rules, err := client.GetRules(context.Background(), []string{"cache_ttl"})
	require.NoError(t, err)
	require.Len(t, rules["cache_ttl"], 1)
	assert.Equal(t, 17, rules["cache_ttl"][0].RuleID)
	assert.Equal(t, "alice", rules["cache_ttl"][0].ContextFeatures["user"])
}

func TestHTTPClient_GetRulesForSetting_MissingFromResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"rules": map[string]interface{}{}})
	}))

	_, err := client.GetRulesForSetting(context.Background(), "cache_ttl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing from rules query response")
}

func TestHTTPClient_AddRule(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/rules", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cache_ttl", req["setting"])
		assert.Equal(t, map[string]interface{}{"user": "alice"}, req["feature_values"])

		metadata, ok := req["metadata"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", metadata["added_by"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"rule_id": 42})
	}))

	ruleID, err := client.AddRule(context.Background(), "cache_ttl",
		map[string]string{"user": "alice"}, 30,
		map[string]interface{}{"added_by": "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 42, ruleID)
}

func TestHTTPClient_GetRule(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rules/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"setting":        "cache_ttl",
			"value":          30,
			"feature_values": map[string]string{"user": "alice"},
			"metadata":       map[string]interface{}{"added_by": "alice@example.com"},
		})
	}))

	rule, err := client.GetRule(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "cache_ttl", rule.Setting)
	assert.Equal(t, float64(30), rule.Value)
}

func TestHTTPClient_EditRuleValue(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/rules/42/value", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(60), req["value"])

		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.EditRuleValue(context.Background(), 42, 60)
	require.NoError(t, err)
}

func TestHTTPClient_UpdateRuleMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/rules/42/metadata", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		metadata, ok := req["metadata"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "bob@example.com", metadata["added_by"])

		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.UpdateRuleMetadata(context.Background(), 42,
		map[string]interface{}{"added_by": "bob@example.com"})
	require.NoError(t, err)
}

func TestHTTPClient_DeleteRule(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/rules/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.DeleteRule(context.Background(), 42)
	require.NoError(t, err)
}

func TestHTTPClient_GetContextFeatures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/context_features", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"context_features": []string{"env", "user"},
		})
	}))

	features, err := client.GetContextFeatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"env", "user"}, features)
}

func TestHTTPClient_StatusErrorCarriesBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"rule not found"}`))
	}))

	err := client.DeleteRule(context.Background(), 42)
	require.Error(t, err)

	se, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "delete_rule", se.Operation)
	assert.Equal(t, "application/json", se.ContentType)
	assert.JSONEq(t, `{"detail":"rule not found"}`, string(se.Body))
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := client.Ping(ctx)
	assert.Error(t, err)
}
