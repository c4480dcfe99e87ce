package values

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Scrape extracts the names following prefix in text, in order of first
// appearance. A token starts at a prefix that begins the text or follows a
// character that is not a letter or digit, so addresses like
// bob@example.com are skipped. Names are letters, digits, '_', '-' and
// '.', with trailing dots dropped.
func Scrape(text string, prefix rune) []string {
	var out []string
	seen := make(map[string]bool)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != prefix {
			continue
		}
		if i > 0 && isNameRune(runes[i-1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isNameRune(runes[j]) || runes[j] == '.') {
			j++
		}
		name := strings.TrimRight(string(runes[i+1:j]), ".")
		i = j - 1
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// ScrapeReader scrapes r line by line.
func ScrapeReader(r io.Reader, prefix rune) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, name := range Scrape(sc.Text(), prefix) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScrapeFile scrapes the file at path.
func ScrapeFile(path string, prefix rune) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", path, err)
	}
	defer f.Close()

	names, err := ScrapeReader(f, prefix)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", path, err)
	}
	return names, nil
}
