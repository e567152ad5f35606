package management

import (
	"fmt"

	"github.com/biocatchltd/hekshermgmt/internal/constants"
)

func ValidateAddRule(req AddRuleRequest) error {
	if req.Setting == "" {
		return fmt.Errorf("setting is required")
	}
	if len(req.FeatureValues) == 0 {
		return fmt.Errorf("feature_values must not be empty")
	}
	for feature, value := range req.FeatureValues {
		if feature == "" || value == "" {
			return fmt.Errorf("feature_values must not contain empty names or values")
		}
	}
	if len(req.Information) > constants.MaxInformationLength {
		return fmt.Errorf("information must be at most %d characters, got %d",
			constants.MaxInformationLength, len(req.Information))
	}
	if len(req.Value) == 0 {
		return fmt.Errorf("value is required")
	}
	return nil
}

func ValidateEditRule(req EditRuleRequest) error {
	if len(req.Value) == 0 {
		return fmt.Errorf("value is required")
	}
	return nil
}

var validDialects = map[string]bool{
	"excel":     true,
	"excel-tab": true,
	"unix":      true,
}

func ValidateExportDialect(dialect string) error {
	if !validDialects[dialect] {
		return fmt.Errorf("unknown dialect %q, must be one of excel, excel-tab, unix", dialect)
	}
	return nil
}
