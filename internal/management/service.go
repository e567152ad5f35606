package management

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/biocatchltd/hekshermgmt/internal/constants"
	"github.com/biocatchltd/hekshermgmt/internal/heksher"
	"github.com/biocatchltd/hekshermgmt/internal/logger"
	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
	"github.com/biocatchltd/hekshermgmt/pkg/logging"
	"github.com/biocatchltd/hekshermgmt/pkg/metrics"
)

type Service interface {
	ListSettings(ctx context.Context) ([]Setting, error)
	ListSettingRules(ctx context.Context, settingName string) ([]Rule, error)
	AddRule(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error)
	EditRule(ctx context.Context, ruleID int, req EditRuleRequest) error
	DeleteRule(ctx context.Context, ruleID int) error
	ExportCSV(ctx context.Context, opts ExportOptions) ([]byte, error)
}

// ManagementService sits between the HTTP handlers and the Heksher client.
// It stamps mutations with the operator identity from ctx and writes the
// audit trail; it holds no state of its own.
type ManagementService struct {
	heksher heksher.Client
	audit   *AuditLogger
	log     logger.Logger

	exportFields []string
}

func NewService(client heksher.Client, log logger.Logger, exportFields []string) *ManagementService {
	if len(exportFields) == 0 {
		exportFields = []string{
			constants.MetadataAddedBy,
			constants.MetadataInformation,
			constants.MetadataDate,
		}
	}
	return &ManagementService{
		heksher:      client,
		audit:        NewAuditLogger(log),
		log:          log,
		exportFields: exportFields,
	}
}

func (s *ManagementService) ListSettings(ctx context.Context) ([]Setting, error) {
	raw, err := s.heksher.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	settings := make([]Setting, 0, len(raw))
	for _, setting := range raw {
		settings = append(settings, Setting{
			Name:                 setting.Name,
			ConfigurableFeatures: setting.ConfigurableFeatures,
			Type:                 setting.Type,
			DefaultValue:         setting.DefaultValue,
			Description:          metadataString(setting.Metadata, constants.MetadataDescription),
		})
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Name < settings[j].Name })
	return settings, nil
}

func (s *ManagementService) ListSettingRules(ctx context.Context, settingName string) ([]Rule, error) {
	raw, err := s.heksher.GetRulesForSetting(ctx, settingName)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(raw))
	for _, rule := range raw {
		rules = append(rules, Rule{
			Value:           displayValue(rule.Value),
			ContextFeatures: rule.ContextFeatures,
			RuleID:          rule.RuleID,
			AddedBy:         metadataString(rule.Metadata, constants.MetadataAddedBy),
			Information:     metadataString(rule.Metadata, constants.MetadataInformation),
			Date:            metadataString(rule.Metadata, constants.MetadataDate),
		})
	}
	return rules, nil
}

func (s *ManagementService) AddRule(ctx context.Context, req AddRuleRequest) (*AddRuleResponse, error) {
	if err := ValidateAddRule(req); err != nil {
		metrics.IncRuleMutation("add", "invalid")
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	metadata := map[string]interface{}{
		constants.MetadataAddedBy:     logging.GetUser(ctx),
		constants.MetadataInformation: req.Information,
		constants.MetadataDate:        time.Now().Format(time.RFC3339),
	}

	ruleID, err := s.heksher.AddRule(ctx, req.Setting, req.FeatureValues, req.Value, metadata)
	if err != nil {
		metrics.IncRuleMutation("add", "error")
		s.audit.RuleAddFailed(ctx, req.Setting, req.FeatureValues, err)
		return nil, err
	}

	metrics.IncRuleMutation("add", "ok")
	s.audit.RuleAdded(ctx, ruleID, req.Setting, req.FeatureValues, req.Value)
	return &AddRuleResponse{RuleID: ruleID}, nil
}

// EditRule replaces the rule's value and then re-stamps its metadata with the
// editing operator and time. The two engine calls are not atomic: if the
// stamp fails after the value went through, the rule carries the new value
// with the previous operator's stamp, which is logged at error level.
func (s *ManagementService) EditRule(ctx context.Context, ruleID int, req EditRuleRequest) error {
	if err := ValidateEditRule(req); err != nil {
		metrics.IncRuleMutation("edit", "invalid")
		return pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	rule, err := s.heksher.GetRule(ctx, ruleID)
	if err != nil {
		metrics.IncRuleMutation("edit", "error")
		s.audit.RuleFetchFailed(ctx, ruleID, "edit", err)
		return err
	}

	if err := s.heksher.EditRuleValue(ctx, ruleID, req.Value); err != nil {
		metrics.IncRuleMutation("edit", "error")
		s.audit.RuleEditFailed(ctx, ruleID, err)
		return err
	}

	metadata := map[string]interface{}{
		constants.MetadataAddedBy: logging.GetUser(ctx),
		constants.MetadataDate:    time.Now().Format(time.RFC3339),
	}
	if err := s.heksher.UpdateRuleMetadata(ctx, ruleID, metadata); err != nil {
		metrics.IncRuleMutation("edit", "stamp_error")
		s.audit.RuleStampFailed(ctx, ruleID, err)
		return err
	}

	metrics.IncRuleMutation("edit", "ok")
	s.audit.RuleEdited(ctx, ruleID, rule.Setting, rule.Value, req.Value)
	return nil
}

func (s *ManagementService) DeleteRule(ctx context.Context, ruleID int) error {
	rule, err := s.heksher.GetRule(ctx, ruleID)
	if err != nil {
		metrics.IncRuleMutation("delete", "error")
		s.audit.RuleFetchFailed(ctx, ruleID, "delete", err)
		return err
	}

	s.audit.RuleDeleting(ctx, ruleID, rule.Setting, rule.Value)

	if err := s.heksher.DeleteRule(ctx, ruleID); err != nil {
		metrics.IncRuleMutation("delete", "error")
		s.audit.RuleDeleteFailed(ctx, ruleID, err)
		return err
	}

	metrics.IncRuleMutation("delete", "ok")
	return nil
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key].(string)
	if !ok {
		return ""
	}
	return value
}

// displayValue renders mapping values as compact JSON strings so the UI
// table shows a single cell instead of a nested object.
func displayValue(value interface{}) interface{} {
	if _, ok := value.(map[string]interface{}); !ok {
		return value
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return value
	}
	return string(encoded)
}
