package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateStructured parses content as JSON and validates it against
// schemaRaw. Models sometimes wrap JSON in a markdown fence; that wrapper is
// stripped before parsing. An empty schema skips validation and only checks
// that the content parses.
func ValidateStructured(schemaRaw json.RawMessage, content string) (json.RawMessage, error) {
	cleaned := stripJSONFence(content)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if len(schemaRaw) > 0 {
		schema, err := jsonschema.CompileString("response.schema.json", string(schemaRaw))
		if err != nil {
			return nil, fmt.Errorf("compile response schema: %w", err)
		}
		if err := schema.Validate(value); err != nil {
			return nil, fmt.Errorf("response does not match schema: %w", err)
		}
	}

	return json.RawMessage(cleaned), nil
}

// stripJSONFence removes a surrounding ```json ... ``` markdown fence.
func stripJSONFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
