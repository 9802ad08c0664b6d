package util

import (
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJSONFromText tries to find the largest JSON array/object in the text.
// Generation services often wrap JSON in markdown code fences or typographic
// quotes; this strips both before slicing out the JSON payload. An array is
// preferred over an object when both appear.
func ExtractJSONFromText(text string) string {
	// 1. Prefer a markdown code block when present
	if matches := codeFenceRe.FindStringSubmatch(text); len(matches) > 1 {
		text = matches[1]
	}

	text = NormalizeSmartQuotes(text)

	// 2. Slice between the first opening bracket and the last closing one
	if sliced, ok := sliceBetween(text, '[', ']'); ok {
		return sliced
	}
	if sliced, ok := sliceBetween(text, '{', '}'); ok {
		return sliced
	}

	return strings.TrimSpace(text)
}

func sliceBetween(text string, opener, closer byte) (string, bool) {
	start := strings.IndexByte(text, opener)
	if start == -1 {
		return "", false
	}
	end := strings.LastIndexByte(text, closer)
	if end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"„", `"`, // double low-9 quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
)

// NormalizeSmartQuotes maps typographic quotes to their ASCII equivalents.
func NormalizeSmartQuotes(text string) string {
	return smartQuoteReplacer.Replace(text)
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// RepairJSON applies a single repair pass for the two near-JSON defects
// generation services most commonly emit: trailing commas before a closing
// bracket and unquoted object keys.
func RepairJSON(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = bareKeyRe.ReplaceAllString(text, `$1"$2":`)
	return text
}
