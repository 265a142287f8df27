package salesforce

import (
	"regexp"
	"strings"
)

var fieldsSentinel = regexp.MustCompile(`(?i)fields\((all|custom)\)`)

// IsSelect reports whether soql is a query statement.
func IsSelect(soql string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(soql)), "select")
}

// UsesFieldsSentinel reports whether soql selects FIELDS(ALL) or FIELDS(CUSTOM).
func UsesFieldsSentinel(soql string) bool {
	return fieldsSentinel.MatchString(soql)
}

// WantsCustomOnly reports whether soql selects FIELDS(CUSTOM).
func WantsCustomOnly(soql string) bool {
	return strings.Contains(strings.ToLower(soql), "fields(custom)")
}

// ObjectName returns the sObject queried by soql: the token after the first
// top level FROM. Subqueries in parentheses are skipped.
func ObjectName(soql string) string {
	depth := 0
	tokens := strings.Fields(soql)
	for i, tok := range tokens {
		if depth == 0 && strings.EqualFold(tok, "from") && i+1 < len(tokens) {
			return strings.TrimRight(tokens[i+1], ",;)")
		}
		depth += strings.Count(tok, "(") - strings.Count(tok, ")")
		if depth < 0 {
			depth = 0
		}
	}
	return ""
}

// SelectFields returns the field names to select. With custom set only
// custom fields, those ending in __c, are kept.
func SelectFields(fields []string, custom bool) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if custom && !strings.HasSuffix(f, "__c") {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ExpandFields replaces FIELDS(ALL) and FIELDS(CUSTOM) in soql with an
// explicit field list.
func ExpandFields(soql string, fields []string) string {
	list := strings.Join(fields, ", ")
	return fieldsSentinel.ReplaceAllLiteralString(soql, list)
}
