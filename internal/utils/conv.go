package utils

import (
	"regexp"
	"unicode/utf8"
)

var nonIDChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Truncate 按字符截断，超出部分用 "..." 代替
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Cut 按字符截断，不加省略号
func Cut(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SanitizeID 将非字母数字下划线的字符替换为 "_"
func SanitizeID(s string) string {
	return nonIDChars.ReplaceAllString(s, "_")
}
