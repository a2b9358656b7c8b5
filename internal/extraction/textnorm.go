// internal/extraction/textnorm.go
package extraction

import (
	"strings"
	"unicode"
)

// Marks that only ever close a clause. Commas are left alone inside the text
// because they belong to tokens such as "100,".
const clauseMarks = "!?;:"

// Words whose trailing period is part of the word, so a capitalized word after
// them does not start a new sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "jr": true, "sr": true,
	"st": true, "ave": true, "rd": true, "blvd": true, "no": true, "apt": true,
	"hon": true, "atty": true, "vs": true, "etc": true,
}

// NormalizeText prepares transcript text for the NLU query: standalone
// punctuation tokens are dropped, clause marks are stripped from token ends,
// sentence-ending periods are removed (a period before a capitalized word,
// unless the token is an abbreviation or initial), the final terminator is
// removed, whitespace is collapsed, and the result is cut to maxLength runes.
// maxLength <= 0 disables truncation.
func NormalizeText(raw string, maxLength int) string {
	tokens := strings.Fields(raw)
	kept := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if isPunctuationOnly(tok) {
			continue
		}
		tok = strings.TrimRight(tok, clauseMarks)
		if tok == "" {
			continue
		}
		kept = append(kept, tok)
	}

	for i := 0; i+1 < len(kept); i++ {
		if endsSentence(kept[i], kept[i+1]) {
			kept[i] = strings.TrimRight(kept[i], ".")
		}
	}

	if n := len(kept); n > 0 {
		last := strings.TrimRight(kept[n-1], ".,")
		if last == "" {
			kept = kept[:n-1]
		} else {
			kept[n-1] = last
		}
	}

	return truncateRunes(strings.Join(kept, " "), maxLength)
}

func endsSentence(tok, next string) bool {
	if !strings.HasSuffix(tok, ".") || !startsUpper(next) {
		return false
	}
	word := strings.TrimRight(tok, ".")
	switch {
	case word == "":
		return false
	case strings.Contains(word, "."): // a.m., U.S.
		return false
	case len([]rune(word)) == 1 && startsUpper(word): // initials
		return false
	}
	return !abbreviations[strings.ToLower(word)]
}

func startsUpper(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func isPunctuationOnly(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

func truncateRunes(s string, maxLength int) string {
	if maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength])
}
