// README: Pasted-text contact parsing (heuristic first, AI assist optional).
package parse

import (
	"context"
	"regexp"
	"strings"
)

// Contact is what gets extracted from a pasted blob of text: an email
// signature, a CRM row, a text message.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Apt     string `json:"apt"`
}

// ContactParser extracts contact fields from free-form text.
type ContactParser interface {
	ParseContact(ctx context.Context, text string) (Contact, error)
}

var (
	phoneRe = regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	aptRe   = regexp.MustCompile(`(?i)\b(?:apartment|apt|unit|suite|ste|floor|fl|#)\.?\s*#?\s*([\w-]+)`)
	// A street address line starts with a house number.
	streetRe = regexp.MustCompile(`(?i)^\d+[\w-]*\s+[A-Za-z].*`)
)

// HeuristicParser is the zero-cost default: regex and line-shape guesses. It
// never errors; fields it cannot place stay empty.
type HeuristicParser struct{}

func (HeuristicParser) ParseContact(_ context.Context, text string) (Contact, error) {
	var c Contact

	if m := phoneRe.FindString(text); m != "" {
		c.Phone = m
	}
	if m := aptRe.FindStringSubmatch(text); m != nil {
		c.Apt = m[1]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case c.Address == "" && streetRe.MatchString(line):
			c.Address = stripApt(line)
		case c.Name == "" && looksLikeName(line):
			c.Name = line
		}
	}
	return c, nil
}

// stripApt removes a trailing apartment fragment from an address line; the apt
// field carries it separately.
func stripApt(line string) string {
	if loc := aptRe.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}
	return strings.TrimRight(strings.TrimSpace(line), ",")
}

func looksLikeName(line string) bool {
	if phoneRe.MatchString(line) || strings.ContainsAny(line, "@0123456789") {
		return false
	}
	words := strings.Fields(line)
	return len(words) >= 1 && len(words) <= 4 && len(line) <= 60
}
