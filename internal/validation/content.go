package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Content limits in characters, measured after trimming.
const (
	PostMaxLen    = 1000
	CommentMaxLen = 500
)

// PostContent trims content and checks its length.
func PostContent(content string) (string, error) {
	return boundedText("post content", content, PostMaxLen)
}

// CommentContent trims content and checks its length.
func CommentContent(content string) (string, error) {
	return boundedText("comment content", content, CommentMaxLen)
}

func boundedText(field, text string, limit int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(text) > limit {
		return "", fmt.Errorf("%s must not exceed %d characters", field, limit)
	}
	return text, nil
}
