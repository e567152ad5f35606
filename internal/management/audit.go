package management

import (
	"context"

	"github.com/biocatchltd/hekshermgmt/internal/logger"
)

// AuditLogger emits the structured audit trail for rule mutations. The
// operator identity travels in ctx and is appended to every entry by the
// context-aware log methods, so entries here only carry the rule fields.
type AuditLogger struct {
	log logger.Logger
}

func NewAuditLogger(log logger.Logger) *AuditLogger {
	return &AuditLogger{log: log}
}

func (a *AuditLogger) RuleAdded(ctx context.Context, ruleID int, setting string, featureValues map[string]string, value interface{}) {
	a.log.InfowCtx(ctx, "Added rule",
		"rule_id", ruleID,
		"setting_name", setting,
		"feature_values", featureValues,
		"rule_value", value,
	)
}

func (a *AuditLogger) RuleAddFailed(ctx context.Context, setting string, featureValues map[string]string, err error) {
	a.log.WarnwCtx(ctx, "Failed to add rule",
		"setting_name", setting,
		"feature_values", featureValues,
		"error", err,
	)
}

// RuleDeleting is written before the delete request goes out, so the rule's
// last value survives in the log even though the rule itself is gone.
func (a *AuditLogger) RuleDeleting(ctx context.Context, ruleID int, setting string, value interface{}) {
	a.log.InfowCtx(ctx, "Deleting rule",
		"rule_id", ruleID,
		"setting_name", setting,
		"rule_value", value,
	)
}

func (a *AuditLogger) RuleDeleteFailed(ctx context.Context, ruleID int, err error) {
	a.log.WarnwCtx(ctx, "Failed to delete rule",
		"rule_id", ruleID,
		"error", err,
	)
}

func (a *AuditLogger) RuleEdited(ctx context.Context, ruleID int, setting string, oldValue, newValue interface{}) {
	a.log.InfowCtx(ctx, "Edited rule value",
		"rule_id", ruleID,
		"setting_name", setting,
		"old_value", oldValue,
		"new_value", newValue,
	)
}

func (a *AuditLogger) RuleEditFailed(ctx context.Context, ruleID int, err error) {
	a.log.WarnwCtx(ctx, "Failed to edit rule value",
		"rule_id", ruleID,
		"error", err,
	)
}

func (a *AuditLogger) RuleFetchFailed(ctx context.Context, ruleID int, action string, err error) {
	a.log.WarnwCtx(ctx, "Failed to fetch rule before mutation",
		"rule_id", ruleID,
		"action", action,
		"error", err,
	)
}

// RuleStampFailed marks the ambiguous state where the value update went
// through but the metadata re-stamp did not, leaving stale added_by/date on
// the rule. Logged at error level so it gets operator attention.
func (a *AuditLogger) RuleStampFailed(ctx context.Context, ruleID int, err error) {
	a.log.ErrorwCtx(ctx, "Rule value updated but metadata stamp failed",
		"rule_id", ruleID,
		"error", err,
	)
}
