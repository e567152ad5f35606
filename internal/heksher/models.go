package heksher

// Wire types for the Heksher HTTP API (v1 contract).

type Setting struct {
	Name                 string                 `json:"name"`
	ConfigurableFeatures []string               `json:"configurable_features"`
	Type                 string                 `json:"type"`
	DefaultValue         interface{}            `json:"default_value"`
	Metadata             map[string]interface{} `json:"metadata"`
}

// Rule is a rule as returned by the rules/query endpoint, scoped to a setting.
type Rule struct {
	RuleID          int                    `json:"rule_id"`
	Value           interface{}            `json:"value"`
	ContextFeatures map[string]string      `json:"context_features"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// RuleData is the full single-rule view from GET /rules/{id}, including the
// owning setting.
type RuleData struct {
	Setting       string                 `json:"setting"`
	Value         interface{}            `json:"value"`
	FeatureValues map[string]string      `json:"feature_values"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type settingsResponse struct {
	Settings []Setting `json:"settings"`
}

type rulesQueryRequest struct {
	SettingNames           []string `json:"setting_names"`
	ContextFeaturesOptions string   `json:"context_features_options"`
	IncludeMetadata        bool     `json:"include_metadata"`
}

type rulesQueryResponse struct {
	Rules map[string][]Rule `json:"rules"`
}

type addRuleRequest struct {
	Setting       string                 `json:"setting"`
	FeatureValues map[string]string      `json:"feature_values"`
	Value         interface{}            `json:"value"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type addRuleResponse struct {
	RuleID int `json:"rule_id"`
}

type editRuleValueRequest struct {
	Value interface{} `json:"value"`
}

type updateMetadataRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

type contextFeaturesResponse struct {
	ContextFeatures []string `json:"context_features"`
}
