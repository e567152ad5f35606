package management

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/biocatchltd/hekshermgmt/internal/heksher"
	"github.com/biocatchltd/hekshermgmt/internal/logger"
	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := pkgerrors.ToHTTPStatus(err)
	response := pkgerrors.ToErrorResponse(err)

	c.JSON(status, response)
}

// RespondError writes the response for a failed service call. Upstream
// engine errors with a client-correctable status are forwarded with their
// original status and body; everything else goes through the usual error
// envelope, with unexpected engine failures collapsed to a 500.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	if se, ok := heksher.AsPassthrough(err); ok {
		h.Logger.WarnwCtx(c.Request.Context(), "Forwarding upstream error",
			"operation", se.Operation, "status", se.StatusCode, "path", c.Request.URL.Path)
		contentType := se.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		c.Data(se.StatusCode, contentType, se.Body)
		return
	}

	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		h.HandleError(c, appErr)
		return
	}
	h.HandleError(c, heksher.TranslateError(err))
}

type Handler struct {
	BaseHandler
	banner *Banner
}

func NewHandler(service Service, log logger.Logger, banner *Banner) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
		banner: banner,
	}
}

// RegisterRoutes mounts the management API. identityMW guards the /api/v1
// group only: the banner is needed before the fronting proxy has attached an
// identity, and probes hit /health anonymously.
func (h *Handler) RegisterRoutes(router *gin.Engine, identityMW ...gin.HandlerFunc) {
	v1 := router.Group("/api/v1", identityMW...)
	{
		settings := v1.Group("/settings")
		{
			settings.GET("", h.ListSettings)
			settings.GET("/:name/rules", h.ListSettingRules)
			settings.GET("/export/csv", h.ExportSettings)
		}

		rule := v1.Group("/rule")
		{
			rule.POST("", h.AddRule)
			rule.PATCH("/:id", h.EditRule)
			rule.DELETE("/:id", h.DeleteRule)
		}
	}

	router.GET("/backend/banner", h.GetBanner)
}

// ListSettings godoc
// @Summary      List all settings
// @Description  Get all settings known to the rule engine
// @Tags         settings
// @Produce      json
// @Success      200  {array}   Setting
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /settings [get]
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.Service.ListSettings(c.Request.Context())
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListSettingRules godoc
// @Summary      List the rules of a setting
// @Description  Get all rules configured for a single setting
// @Tags         settings
// @Produce      json
// @Param        name  path      string  true  "Setting name"
// @Success      200   {array}   Rule
// @Failure      404   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /settings/{name}/rules [get]
func (h *Handler) ListSettingRules(c *gin.Context) {
	rules, err := h.Service.ListSettingRules(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// ExportSettings godoc
// @Summary      Export all rules as CSV
// @Description  Download every rule of every setting as a delimited-text document
// @Tags         settings
// @Produce      text/csv
// @Param        metadata_field  query     []string  false  "Metadata columns to include"
// @Param        dialect         query     string    false  "CSV dialect"  Enums(excel, excel-tab, unix)
// @Success      200  {string}  string
// @Failure      422  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /settings/export/csv [get]
func (h *Handler) ExportSettings(c *gin.Context) {
	opts := ExportOptions{
		MetadataFields: c.QueryArray("metadata_field"),
		Dialect:        c.Query("dialect"),
	}

	document, err := h.Service.ExportCSV(c.Request.Context(), opts)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="settings.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", document)
}

// AddRule godoc
// @Summary      Create a rule
// @Description  Create a rule for a setting, stamped with the calling operator
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body      AddRuleRequest  true  "Rule to create"
// @Success      200   {object}  AddRuleResponse
// @Failure      422   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rule [post]
func (h *Handler) AddRule(c *gin.Context) {
	var req AddRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, pkgerrors.ErrValidation.WithCause(err))
		return
	}

	resp, err := h.Service.AddRule(c.Request.Context(), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EditRule godoc
// @Summary      Change a rule's value
// @Description  Replace the value of an existing rule and re-stamp its metadata
// @Tags         rules
// @Accept       json
// @Param        id    path  int              true  "Rule ID"
// @Param        rule  body  EditRuleRequest  true  "Replacement value"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      422  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rule/{id} [patch]
func (h *Handler) EditRule(c *gin.Context) {
	ruleID, err := ruleIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req EditRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, pkgerrors.ErrValidation.WithCause(err))
		return
	}

	if err := h.Service.EditRule(c.Request.Context(), ruleID, req); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRule godoc
// @Summary      Delete a rule
// @Tags         rules
// @Param        id  path  int  true  "Rule ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rule/{id} [delete]
func (h *Handler) DeleteRule(c *gin.Context) {
	ruleID, err := ruleIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.Service.DeleteRule(c.Request.Context(), ruleID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBanner godoc
// @Summary      Get the UI banner
// @Description  Get the configured warning banner, or null when none is set
// @Tags         backend
// @Produce      json
// @Success      200  {object}  Banner
// @Router       /backend/banner [get]
func (h *Handler) GetBanner(c *gin.Context) {
	c.JSON(http.StatusOK, h.banner)
}

func ruleIDParam(c *gin.Context) (int, error) {
	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", "rule id must be an integer")
	}
	return ruleID, nil
}
