package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Models wrap JSON in prose or code fences more often than not, so
// extraction happens before validation.
var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\}|\\[.*?\\])\\s*```")
	bareJSONRe   = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
)

// ExtractJSON pulls the first JSON object or array out of an LLM reply.
// Code-fenced blocks win over bare JSON; with neither, the text is
// returned unchanged and left to the validator to reject.
func ExtractJSON(text string) string {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}

const structureSchema = `{
	"type": "object",
	"required": ["course_name"],
	"properties": {
		"course_name": {"type": "string"},
		"units": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["unit_name"],
				"properties": {
					"unit_number": {"type": ["string", "number"]},
					"unit_name": {"type": "string"},
					"topics": {"type": "array", "items": {"type": "string"}},
					"weightage": {"type": "number"}
				}
			}
		}
	}
}`

const questionsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["question", "marks"],
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"marks": {"type": "integer", "minimum": 1},
			"bloom_level": {"type": "string"},
			"topic": {"type": "string"},
			"difficulty": {"type": "string"}
		}
	}
}`

var (
	structureSchemaLoader = gojsonschema.NewStringLoader(structureSchema)
	questionsSchemaLoader = gojsonschema.NewStringLoader(questionsSchema)
)

func validate(schema gojsonschema.JSONLoader, raw string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ValidateStructure checks a structuring reply against its schema.
func ValidateStructure(raw string) error {
	return validate(structureSchemaLoader, raw)
}

// ValidateQuestions checks an authoring reply against its schema.
func ValidateQuestions(raw string) error {
	return validate(questionsSchemaLoader, raw)
}
