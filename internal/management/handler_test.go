package management

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biocatchltd/hekshermgmt/internal/heksher"
	"github.com/biocatchltd/hekshermgmt/internal/logger"
	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
	"github.com/biocatchltd/hekshermgmt/pkg/logging"
	"github.com/biocatchltd/hekshermgmt/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	listSettingsFn     func(ctx context.Context) ([]Setting, error)
	listSettingRulesFn func(ctx context.Context, settingName string) ([]Rule, error)
	addRuleFn          func(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error)
	editRuleFn         func(ctx context.Context, ruleID int, req EditRuleRequest) error
	deleteRuleFn       func(ctx context.Context, ruleID int) error
	exportCSVFn        func(ctx context.Context, opts ExportOptions) ([]byte, error)
}

func (f *fakeService) ListSettings(ctx context.Context) ([]Setting, error) {
	return f.listSettingsFn(ctx)
}

func (f *fakeService) ListSettingRules(ctx context.Context, settingName string) ([]Rule, error) {
	return f.listSettingRulesFn(ctx, settingName)
}

func (f *fakeService) AddRule(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error) {
	return f.addRuleFn(ctx, req)
}

func (f *fakeService) EditRule(ctx context.Context, ruleID int, req EditRuleRequest) error {
	return f.editRuleFn(ctx, ruleID, req)
}

func (f *fakeService) DeleteRule(ctx context.Context, ruleID int) error {
	return f.deleteRuleFn(ctx, ruleID)
}

func (f *fakeService) ExportCSV(ctx context.Context, opts ExportOptions) ([]byte, error) {
	return f.exportCSVFn(ctx, opts)
}

func newTestRouter(svc Service, banner *Banner, identityMW ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handler := NewHandler(svc, logger.NopLogger(), banner)
	handler.RegisterRoutes(router, identityMW...)
	return router
}

func TestHandler_AddRule(t *testing.T) {
	svc := &fakeService{
		addRuleFn: func(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error) {
			assert.Equal(t, "cache_ttl", req.Setting)
			assert.Equal(t, map[string]string{"user": "a"}, req.FeatureValues)
			assert.JSONEq(t, `30`, string(req.Value))
			return &AddRuleResponse{RuleID: 42}, nil
		},
	}
	router := newTestRouter(svc, nil)

	body := `{"setting":"cache_ttl","feature_values":{"user":"a"},"value":30}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rule_id":42}`, w.Body.String())
}

func TestHandler_AddRule_ValidationError(t *testing.T) {
	svc := &fakeService{
		addRuleFn: func(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error) {
			return nil, pkgerrors.ErrValidation.WithDetail("message", "feature_values must not be empty")
		},
	}
	router := newTestRouter(svc, nil)

	body := `{"setting":"cache_ttl","feature_values":{},"value":30}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])
}

func TestHandler_AddRule_MalformedBody(t *testing.T) {
	router := newTestRouter(&fakeService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rule", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_DeleteRule_NoContent(t *testing.T) {
	svc := &fakeService{
		deleteRuleFn: func(ctx context.Context, ruleID int) error {
			assert.Equal(t, 42, ruleID)
			return nil
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rule/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandler_DeleteRule_UpstreamNotFoundPassesThrough(t *testing.T) {
	upstreamBody := `{"detail":"rule 42 not found"}`
	svc := &fakeService{
		deleteRuleFn: func(ctx context.Context, ruleID int) error {
			return &heksher.StatusError{
				Operation:   "get_rule",
				StatusCode:  http.StatusNotFound,
				ContentType: "application/json",
				Body:        []byte(upstreamBody),
			}
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rule/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, upstreamBody, w.Body.String(), "upstream body must be forwarded verbatim")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestHandler_DeleteRule_UpstreamServerErrorCollapsesTo500(t *testing.T) {
	svc := &fakeService{
		deleteRuleFn: func(ctx context.Context, ruleID int) error {
			return &heksher.StatusError{
				Operation:  "delete_rule",
				StatusCode: http.StatusBadGateway,
				Body:       []byte("engine stack trace"),
			}
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rule/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "engine stack trace")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])
}

func TestHandler_EditRule_NoContent(t *testing.T) {
	svc := &fakeService{
		editRuleFn: func(ctx context.Context, ruleID int, req EditRuleRequest) error {
			assert.Equal(t, 42, ruleID)
			assert.JSONEq(t, `60`, string(req.Value))
			return nil
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rule/42", strings.NewReader(`{"value":60}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_EditRule_NonIntegerID(t *testing.T) {
	router := newTestRouter(&fakeService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rule/abc", strings.NewReader(`{"value":60}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_ListSettings(t *testing.T) {
	svc := &fakeService{
		listSettingsFn: func(ctx context.Context) ([]Setting, error) {
			return []Setting{
				{Name: "cache_ttl", Type: "int", DefaultValue: 5, Description: "ttl"},
			}, nil
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var settings []Setting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	require.Len(t, settings, 1)
	assert.Equal(t, "cache_ttl", settings[0].Name)
}

func TestHandler_ListSettingRules(t *testing.T) {
	svc := &fakeService{
		listSettingRulesFn: func(ctx context.Context, settingName string) ([]Rule, error) {
			assert.Equal(t, "cache_ttl", settingName)
			return []Rule{{RuleID: 17, Value: 30, AddedBy: "alice@example.com"}}, nil
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/cache_ttl/rules", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var rules []Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, 17, rules[0].RuleID)
	assert.Equal(t, "alice@example.com", rules[0].AddedBy)
}

func TestHandler_ExportSettings(t *testing.T) {
	var gotOpts ExportOptions
	svc := &fakeService{
		exportCSVFn: func(ctx context.Context, opts ExportOptions) ([]byte, error) {
			gotOpts = opts
			return []byte("setting,value\r\n"), nil
		},
	}
	router := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/settings/export/csv?dialect=excel-tab&metadata_field=added_by&metadata_field=date", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "excel-tab", gotOpts.Dialect)
	assert.Equal(t, []string{"added_by", "date"}, gotOpts.MetadataFields)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "settings.csv")
}

func TestHandler_GetBanner_NotConfigured(t *testing.T) {
	router := newTestRouter(&fakeService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/backend/banner", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestHandler_GetBanner_Configured(t *testing.T) {
	banner := &Banner{Text: "production", Color: "red", TextColor: "white"}
	router := newTestRouter(&fakeService{}, banner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/backend/banner", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"production","color":"red","text_color":"white"}`, w.Body.String())
}

func TestHandler_IdentityRequired(t *testing.T) {
	var gotUser string
	svc := &fakeService{
		listSettingsFn: func(ctx context.Context) ([]Setting, error) {
			gotUser = logging.GetUser(ctx)
			return nil, nil
		},
	}
	identityMW := middleware.IdentityMiddleware(middleware.IdentityConfig{RequireUser: true})
	router := newTestRouter(svc, nil, identityMW)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.Header.Set("X-Forwarded-Email", "alice@example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", gotUser)
}

func TestHandler_IdentityNotGuardingBanner(t *testing.T) {
	identityMW := middleware.IdentityMiddleware(middleware.IdentityConfig{RequireUser: true})
	router := newTestRouter(&fakeService{}, nil, identityMW)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/backend/banner", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
