package management

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
)

// ExportOptions selects the columns and flavor of the CSV document. An empty
// MetadataFields falls back to the configured default columns, an empty
// Dialect to excel.
type ExportOptions struct {
	MetadataFields []string
	Dialect        string
}

// ExportCSV renders every rule of every setting as one delimited-text
// document: fixed setting/value columns, then the requested metadata
// columns, then one column per context feature in engine order.
func (s *ManagementService) ExportCSV(ctx context.Context, opts ExportOptions) ([]byte, error) {
	dialect := opts.Dialect
	if dialect == "" {
		dialect = "excel"
	}
	if err := ValidateExportDialect(dialect); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	fields := opts.MetadataFields
	if len(fields) == 0 {
		fields = s.exportFields
	}

	features, err := s.heksher.GetContextFeatures(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.heksher.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	settingNames := make([]string, 0, len(settings))
	for _, setting := range settings {
		settingNames = append(settingNames, setting.Name)
	}
	sort.Strings(settingNames)

	rules, err := s.heksher.GetRules(ctx, settingNames)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	switch dialect {
	case "excel":
		writer.UseCRLF = true
	case "excel-tab":
		writer.Comma = '\t'
		writer.UseCRLF = true
	case "unix":
	}

	header := append([]string{"setting", "value"}, fields...)
	header = append(header, features...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for _, name := range settingNames {
		for _, rule := range rules[name] {
			row := make([]string, 0, len(header))
			row = append(row, name, cellValue(rule.Value))
			for _, field := range fields {
				row = append(row, metadataString(rule.Metadata, field))
			}
			for _, feature := range features {
				row = append(row, rule.ContextFeatures[feature])
			}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}
