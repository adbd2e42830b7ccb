package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"carton/backend/internal/concept"
	"carton/backend/internal/engine"
	apperrors "carton/backend/pkg/errors"
)

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads an integral number. JSON decoding yields float64 while
// other callers may hand in ints or numeric strings.
func intArg(args map[string]interface{}, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, apperrors.NewValidationFailed(key, "must be an integer")
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, apperrors.NewValidationFailed(key, "must be an integer")
		}
		return int(n), nil
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, apperrors.NewValidationFailed(key, "must be an integer")
		}
		return n, nil
	}
	return 0, apperrors.NewValidationFailed(key, "must be an integer")
}

func floatArg(args map[string]interface{}, key string, def float64) (float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, apperrors.NewValidationFailed(key, "must be a number")
		}
		return f, nil
	}
	return 0, apperrors.NewValidationFailed(key, "must be a number")
}

// decodeArg re-encodes a loosely typed argument into out. A string value is
// taken to be JSON text, which some clients send for array parameters.
func decodeArg(args map[string]interface{}, key string, out interface{}) error {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	var data []byte
	if s, isString := raw.(string); isString {
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return apperrors.NewValidationFailed(key, err.Error())
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewValidationFailed(key, "malformed JSON: "+err.Error())
	}
	return nil
}

func relationshipsArg(args map[string]interface{}) (concept.Relationships, error) {
	var rels concept.Relationships
	if err := decodeArg(args, "relationships", &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

func missingItemsArg(args map[string]interface{}) ([]engine.MissingConceptRequest, error) {
	if _, ok := args["concepts_data"]; !ok {
		return nil, apperrors.NewValidationFailed("concepts_data", "is required")
	}
	var items []engine.MissingConceptRequest
	if err := decodeArg(args, "concepts_data", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func paramsArg(args map[string]interface{}) (map[string]any, error) {
	params := map[string]any{}
	if err := decodeArg(args, "parameters", &params); err != nil {
		return nil, err
	}
	return params, nil
}
