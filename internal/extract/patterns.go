package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// pattern is one encoding of a field. Group 1 of re captures the value; clean undoes the encoding's quoting.
type pattern struct {
	re    *regexp.Regexp
	clean func(string) string
}

// fieldPatterns holds, per edit field, the patterns to try in order.
type fieldPatterns struct {
	filePath []pattern
	oldStr   []pattern
	newStr   []pattern
}

// Parameter names in streamed tool-call markup.
var (
	paramFilePathNames = []string{"file_path"}
	paramOldNames      = []string{"old_str", "old_string"}
	paramNewNames      = []string{"new_str", "new_string"}
)

// Names used by the direct-string encodings.
var (
	directFilePathNames = []string{"file_path", "file-path"}
	directOldNames      = []string{"old_str", "old-str", "old_string"}
	directNewNames      = []string{"new_str", "new-str", "new_string"}
)

// streamingPatterns match `<parameter name="NAME">VALUE</parameter>`. The closing tag is optional: a value that is still streaming ends at the next
// `<parameter` tag or at the end of the input.
var streamingPatterns = fieldPatterns{
	filePath: parameterRegexps(paramFilePathNames),
	oldStr:   parameterRegexps(paramOldNames),
	newStr:   parameterRegexps(paramNewNames),
}

// directPatterns match the other encodings, tried per field in this order: XML-ish tags, key="value", key: value (to end of line), and JSON keys.
var directPatterns = fieldPatterns{
	filePath: directRegexps(directFilePathNames),
	oldStr:   directRegexps(directOldNames),
	newStr:   directRegexps(directNewNames),
}

func parameterRegexps(names []string) []pattern {
	var out []pattern
	for _, name := range names {
		re := regexp.MustCompile(`(?s)<parameter\s+name\s*=\s*["']` + regexp.QuoteMeta(name) + `["']\s*>(.*?)(?:</parameter>|<parameter[\s>]|$)`)
		out = append(out, pattern{re: re, clean: identity})
	}
	return out
}

func directRegexps(names []string) []pattern {
	var out []pattern
	for _, name := range names {
		q := regexp.QuoteMeta(name)
		out = append(out, pattern{re: regexp.MustCompile(`(?s)<` + q + `>(.*?)</` + q + `>`), clean: identity})
	}
	for _, name := range names {
		q := regexp.QuoteMeta(name)
		out = append(out, pattern{re: regexp.MustCompile(`(?:^|[^\w"-])` + q + `\s*=\s*"((?:[^"\\]|\\.)*)"`), clean: unescapeJSONString})
	}
	for _, name := range names {
		q := regexp.QuoteMeta(name)
		out = append(out, pattern{re: regexp.MustCompile(`(?m)(?:^|[^\w"<-])` + q + `:[ \t]*(.+)$`), clean: cleanLineValue})
	}
	for _, name := range names {
		q := regexp.QuoteMeta(name)
		out = append(out, pattern{re: regexp.MustCompile(`"` + q + `"\s*:\s*"((?:[^"\\]|\\.)*)"`), clean: unescapeJSONString})
	}
	return out
}

// matchStreaming runs the streaming-parameter patterns over text.
func matchStreaming(text string) Edit {
	return Edit{
		FilePath:  trimmedPtr(firstMatch(streamingPatterns.filePath, text)),
		OldString: firstMatch(streamingPatterns.oldStr, text),
		NewString: firstMatch(streamingPatterns.newStr, text),
	}
}

// matchDirect runs the direct-string patterns over text.
func matchDirect(text string) Edit {
	return Edit{
		FilePath:  trimmedPtr(firstMatch(directPatterns.filePath, text)),
		OldString: firstMatch(directPatterns.oldStr, text),
		NewString: firstMatch(directPatterns.newStr, text),
	}
}

// firstMatch returns the cleaned value of the first pattern that matches text.
func firstMatch(patterns []pattern, text string) *string {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := p.clean(m[1])
		return &v
	}
	return nil
}

func identity(v string) string { return v }

// cleanLineValue trims a key: value capture and drops surrounding double quotes.
func cleanLineValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return unescapeJSONString(v[1 : len(v)-1])
	}
	return v
}

// unescapeJSONString decodes v as the body of a JSON string literal. If v isn't valid JSON string content, it's returned unchanged.
func unescapeJSONString(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+v+`"`), &out); err != nil {
		return v
	}
	return out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
