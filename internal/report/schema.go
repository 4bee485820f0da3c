package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	schemaCacheMu sync.Mutex
	schemaCache   = make(map[string]*jsonschema.Schema)
)

// validateReportWithSchema checks the marshaled report against the run
// report schema. A report saved where no schema is resolvable is written
// unchecked; a resolvable schema that rejects the report is a save error.
func validateReportWithSchema(reportPath string, r *RunReport) error {
	schemaPath := resolveReportSchemaPath(reportPath)
	if schemaPath == "" {
		return nil
	}

	schema, err := loadCompiledSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to compile report schema: %w", err)
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report for schema validation: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize report for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report schema validation failed: %w", err)
	}
	return nil
}

func resolveReportSchemaPath(reportPath string) string {
	candidates := []string{
		filepath.Join(filepath.Dir(reportPath), "report.schema.json"),
		filepath.Join("docs", "report.schema.json"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func loadCompiledSchema(schemaPath string) (*jsonschema.Schema, error) {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, err
	}

	schemaCacheMu.Lock()
	if cached, ok := schemaCache[abs]; ok {
		schemaCacheMu.Unlock()
		return cached, nil
	}
	schemaCacheMu.Unlock()

	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile("file://" + filepath.ToSlash(abs))
	if err != nil {
		return nil, err
	}

	schemaCacheMu.Lock()
	schemaCache[abs] = compiled
	schemaCacheMu.Unlock()
	return compiled, nil
}
