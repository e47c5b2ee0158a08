package dataprocessing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "opsreports/internal/errors"
)

var symbolReplacer = strings.NewReplacer(",", " ")

// NormalizeText turns a semicolon-separated export into a comma-separated one:
// every comma becomes a space first, then every semicolon becomes a comma.
func NormalizeText(s string) string {
	return strings.ReplaceAll(symbolReplacer.Replace(s), ";", ",")
}

// NormalizeSymbols applies NormalizeText to src and writes the result to dst,
// creating dst's directory when needed.
func NormalizeSymbols(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to read %s", src), err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory for %s", dst), err)
	}

	if err := os.WriteFile(dst, []byte(NormalizeText(string(data))), 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", dst), err)
	}

	return nil
}
