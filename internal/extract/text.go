package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// TextReader returns the file content minus a leading byte order mark. Content must be UTF-8.
type TextReader struct{}

func (TextReader) Read(_ context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("text: %s is not valid UTF-8", path)
	}
	return strings.TrimPrefix(string(b), "\uFEFF"), nil
}
