package grammar

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const regexSpecials = `.()[]{}^$|?+*\`

// FromExample synthesizes a grammar from a sample timestamp string. Each
// run of the sample is generalized: month names become alphabetic runs,
// digit runs next to a colon become 1-2 digit fields, other digit runs
// up to 4 digits, and a period introduces optional fractional seconds.
// The result tolerates lines whose timestamps share the sample's shape
// but differ in value.
func FromExample(example string) (*Grammar, error) {
	s := strings.TrimSpace(example)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, fmt.Errorf("empty example timestamp")
	}

	var tokens []string
	runes := []rune(s)
	for i := 0; i < len(runes); {
		ch := runes[i]
		switch {
		case unicode.IsLetter(ch):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			if monthRE.MatchString(word) && len(word) >= 3 {
				tokens = append(tokens, `[A-Za-z]{3,9}`)
			} else {
				tokens = append(tokens, `[A-Za-z]+`)
			}
			i = j
		case unicode.IsDigit(ch):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			nextColon := j < len(runes) && runes[j] == ':'
			prevColon := i > 0 && runes[i-1] == ':'
			if (prevColon || nextColon) && j-i <= 2 {
				tokens = append(tokens, `\d{1,2}`)
			} else {
				tokens = append(tokens, `\d{1,4}`)
			}
			i = j
		case ch == '.':
			tokens = append(tokens, `\.\d{1,9}`)
			i++
		default:
			if strings.ContainsRune(regexSpecials, ch) {
				tokens = append(tokens, `\`+string(ch))
			} else {
				tokens = append(tokens, string(ch))
			}
			i++
		}
	}

	core := strings.ReplaceAll(strings.Join(tokens, ""), " ", `\s+`)
	pattern := `\[?(` + core + `)\]?`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("example %q produced an invalid pattern: %w", example, err)
	}

	hasDate := !IsTimeOnly(s)
	return &Grammar{
		Name:       "Example-derived",
		Pattern:    re,
		PatternStr: pattern,
		Kind:       KindFlexible,
		HasDate:    hasDate,
		HasYear:    hasDate && yearRE.MatchString(s),
		Window:     time.Second,
	}, nil
}
