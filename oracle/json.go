package oracle

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CleanJSONResponse strips envelope noise from an oracle response that is
// supposed to be JSON: markdown code fences and any prose surrounding the
// outermost object or array.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "{") || strings.HasPrefix(response, "[") {
		return response
	}

	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return response
	}

	var end int
	if response[start] == '{' {
		end = strings.LastIndex(response, "}")
	} else {
		end = strings.LastIndex(response, "]")
	}
	if end > start {
		return response[start : end+1]
	}

	return response
}

// decodeStructured cleans, decodes, and validates a structured oracle
// response into out. Validation runs only for struct targets; slice targets
// (e.g. generated input variations) have no tags to enforce.
func decodeStructured(response string, out any) error {
	cleaned := CleanJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return NewOracleError(ErrorTypeParse, "malformed structured response", err)
	}

	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	if err := validate.Struct(out); err != nil {
		return NewOracleError(ErrorTypeValidation, "structured response failed validation", err)
	}
	return nil
}
