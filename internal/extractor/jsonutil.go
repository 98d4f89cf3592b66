package extractor

import (
	"regexp"
	"strings"
)

var (
	// ```json { ... } ```
	objectBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	objectPattern      = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// ```json [ ... ] ```
	arrayBlockPattern    = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	arrayPattern         = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSONObject 从模型回复中取出 JSON 对象，兼容 markdown 代码块
func extractJSONObject(content string) string {
	if m := objectBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		return cleanJSON(m[1])
	}
	if m := objectPattern.FindString(content); m != "" {
		return cleanJSON(m)
	}
	return ""
}

// extractJSONArray 从模型回复中取出 JSON 数组
func extractJSONArray(content string) string {
	if m := arrayBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		return cleanJSON(m[1])
	}
	if m := arrayPattern.FindString(content); m != "" {
		return cleanJSON(m)
	}
	return ""
}

// cleanJSON 去掉字符串外的 // 注释与多余的尾逗号
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return trailingCommaPattern.ReplaceAllString(strings.Join(lines, "\n"), "$1")
}

func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString, escaped := false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
