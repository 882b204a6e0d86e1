package services

import (
	"regexp"
	"strings"
)

var (
	ffIDPattern  = regexp.MustCompile(`^\d{8,12}$`)
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
)

func validFFID(ffID string) bool {
	return ffIDPattern.MatchString(ffID)
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
