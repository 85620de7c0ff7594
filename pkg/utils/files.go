package utils

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// sizePattern matches "<number><unit>" with optional whitespace in between
var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGT]?B)$`)

// sizeUnits maps the supported units to their byte multipliers
var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

// ParseSize parses size strings like "1MB", "500KB" into bytes
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))

	matches := sizePattern.FindStringSubmatch(sizeStr)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}

	size, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %s", matches[1])
	}

	multiplier, exists := sizeUnits[matches[2]]
	if !exists {
		return 0, fmt.Errorf("unknown size unit: %s", matches[2])
	}

	return int64(size * float64(multiplier)), nil
}

// IsTextFile determines if content is text-based: no NUL bytes and at most
// 20% non-printable runes
func IsTextFile(content string) bool {
	if len(content) == 0 {
		return true
	}
	if strings.IndexByte(content, 0) >= 0 {
		return false
	}

	nonPrintable := 0
	for _, r := range content {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(len(content)) <= 0.2
}

// sniffSize is how much of a file SniffTextFile inspects
const sniffSize = 8 * 1024

// SniffTextFile reads the head of a file and applies IsTextFile to it
func SniffTextFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return IsTextFile(string(buf[:n])), nil
}
