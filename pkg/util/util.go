package util

import (
	"math/rand"
	"strings"
)

const randStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string,
// used for task ids.
func GenerateRandStringWithUpperLowerNum(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(randStringCharset[rand.Intn(len(randStringCharset))])
	}
	return sb.String()
}

// SanitizePathName strips characters that break file paths or shell args.
func SanitizePathName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "",
		"\"", "", "<", "_", ">", "_", "|", "_", "=", "",
	)
	return replacer.Replace(name)
}
