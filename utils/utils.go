package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

var unsafeFilename = regexp.MustCompile(`[^\w.\-]`)

// SanitizeFilename keeps only word characters, dots and dashes of the base name.
func SanitizeFilename(name string) string {
	clean := unsafeFilename.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" || clean == "." {
		return "file"
	}
	return clean
}

// SplitList splits a comma-separated value, trimming blanks and dropping duplicates.
func SplitList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(input, ",") {
		item := strings.TrimSpace(p)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
