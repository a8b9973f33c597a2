package config

import (
	"regexp"
	"strings"
)

// assignmentPrefix 匹配误写入值中的 `KEY=` 前缀，例如 CONTRACT_ADDRESS=0xabc
var assignmentPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=\s*`)

// Sanitize 清理环境变量值
//
// 去除首尾空白、`KEY=` 前缀以及两端的引号，重复直到结果稳定：
//
//	CONTRACT_ADDRESS=0xABC   -> 0xABC
//	"0xABC"                  -> 0xABC
//	'CONTRACT_ADDRESS="0xABC"' -> 0xABC
func Sanitize(value string) string {
	for {
		prev := value
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		value = assignmentPrefix.ReplaceAllString(value, "")
		if value == prev {
			return value
		}
	}
}
