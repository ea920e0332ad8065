package util

import (
	"strconv"
	"time"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseYear 解析年份，空字符串时返回当前年份
func ParseYear(s string) (int, error) {
	if s == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, ErrInvalidYear
	}
	return year, nil
}

// ParseDate 按 DateFormat 解析本地日期
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}
