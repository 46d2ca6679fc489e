package service

import (
	"fmt"
	"strconv"
	"strings"
)

// EvaluateCondition gates a rule against a document snapshot. The grammar is
// deliberately small: an empty condition always passes, "field == literal" and
// "field != literal" compare one document field against a literal (optionally
// quoted), and a bare field name tests truthiness. Anything the grammar does
// not recognize fails closed.
func EvaluateCondition(condition string, doc map[string]interface{}) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true
	}

	if field, literal, ok := splitComparison(condition, "=="); ok {
		return compareField(doc[field], literal)
	}
	if field, literal, ok := splitComparison(condition, "!="); ok {
		return !compareField(doc[field], literal)
	}

	if strings.ContainsAny(condition, " \t") {
		return false
	}
	return truthy(doc[condition])
}

func splitComparison(condition, op string) (field, literal string, ok bool) {
	idx := strings.Index(condition, op)
	if idx < 0 {
		return "", "", false
	}
	field = strings.TrimSpace(condition[:idx])
	literal = unquote(strings.TrimSpace(condition[idx+len(op):]))
	if field == "" {
		return "", "", false
	}
	return field, literal, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func compareField(value interface{}, literal string) bool {
	if lf, err := strconv.ParseFloat(literal, 64); err == nil {
		switch v := value.(type) {
		case float64:
			return v == lf
		case int:
			return float64(v) == lf
		case int64:
			return float64(v) == lf
		}
	}
	return stringify(value) == literal
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
