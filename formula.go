package xlgraph

import (
	"regexp"
	"strings"
)

// sheetPrefixRegex matches a sheet qualifier such as Sheet1! or 'My Sheet'!
// together with the character in front of it, so that names embedded in
// longer identifiers are not mistaken for sheet references.
var sheetPrefixRegex = regexp.MustCompile(`(^|[^\w.'])('(?:[^']|'')+'|[A-Za-z_\\][\w.]*)!`)

// renameSheetInFormula rewrites every reference to sheet oldName so that it
// points at newName. String literals are left alone.
func renameSheetInFormula(formula, oldName, newName string) string {
	if !strings.Contains(formula, "!") {
		return formula
	}
	var b strings.Builder
	for i, segment := range strings.Split(formula, `"`) {
		if i > 0 {
			b.WriteByte('"')
		}
		if i%2 == 1 { // inside a string literal
			b.WriteString(segment)
			continue
		}
		b.WriteString(sheetPrefixRegex.ReplaceAllStringFunc(segment, func(match string) string {
			parts := sheetPrefixRegex.FindStringSubmatch(match)
			if !strings.EqualFold(unquoteSheetName(parts[2]), oldName) {
				return match
			}
			return parts[1] + quoteSheetName(newName) + "!"
		}))
	}
	return b.String()
}

// quoteSheetName returns the form of name usable in a formula.
func quoteSheetName(name string) string {
	needsQuotes := name == "" || (name[0] >= '0' && name[0] <= '9')
	for _, r := range name {
		if !(r == '_' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127) {
			needsQuotes = true
			break
		}
	}
	if !needsQuotes {
		if _, err := ParseCellReference(strings.ToUpper(name)); err == nil {
			needsQuotes = true
		}
	}
	if !needsQuotes {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func unquoteSheetName(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// subtotalCodes maps totals-row functions to their SUBTOTAL function
// numbers (the 10x variants ignore hidden rows).
var subtotalCodes = map[string]string{
	"average":   "101",
	"countNums": "102",
	"count":     "103",
	"max":       "104",
	"min":       "105",
	"stdDev":    "107",
	"sum":       "109",
	"var":       "110",
}

// subtotalFormula builds the totals-row formula for a table column, or ""
// for functions without a SUBTOTAL equivalent.
func subtotalFormula(function, table, column string) string {
	code, ok := subtotalCodes[function]
	if !ok {
		return ""
	}
	return "SUBTOTAL(" + code + "," + table + "[" + escapeStructuredName(column) + "])"
}

// escapeStructuredName escapes the characters that are special inside a
// structured reference column specifier.
func escapeStructuredName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '[', ']', '#', '\'':
			b.WriteByte('\'')
		}
		b.WriteRune(r)
	}
	return b.String()
}
