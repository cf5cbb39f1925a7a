package util

import (
	"strconv"
	"strings"
)

// ParseOptionalBool 解析可选的布尔查询参数，空字符串返回 nil
func ParseOptionalBool(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
