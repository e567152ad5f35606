package management

import "encoding/json"

// Setting is a configuration setting as exposed to the management UI, with
// the description lifted out of the engine-side metadata.
type Setting struct {
	Name                 string      `json:"name"`
	ConfigurableFeatures []string    `json:"configurable_features"`
	Type                 string      `json:"type"`
	DefaultValue         interface{} `json:"default_value"`
	Description          string      `json:"description,omitempty"`
}

// Rule is a single rule of a setting, with the audit metadata flattened into
// top-level fields. Mapping values are rendered as JSON strings so the UI
// table can show them as-is.
type Rule struct {
	Value           interface{}       `json:"value"`
	ContextFeatures map[string]string `json:"context_features"`
	RuleID          int               `json:"rule_id"`
	AddedBy         string            `json:"added_by,omitempty"`
	Information     string            `json:"information,omitempty"`
	Date            string            `json:"date,omitempty"`
}

// AddRuleRequest is the payload for creating a rule. Value is kept raw so it
// reaches the backing engine exactly as the caller sent it.
type AddRuleRequest struct {
	Setting       string            `json:"setting" binding:"required"`
	FeatureValues map[string]string `json:"feature_values"`
	Value         json.RawMessage   `json:"value"`
	Information   string            `json:"information"`
}

type AddRuleResponse struct {
	RuleID int `json:"rule_id"`
}

// EditRuleRequest carries the replacement value for an existing rule.
type EditRuleRequest struct {
	Value json.RawMessage `json:"value"`
}

// Banner is the optional warning strip the UI renders above the settings
// table, e.g. to mark a production deployment.
type Banner struct {
	Text      string `json:"text"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
}
