package authz

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedMarker = "[REDACTED]"

// secretPattern pairs a detector with its replacement template, as used by
// regexp.ReplaceAllString (so "$1" refers back to a capture group).
type secretPattern struct {
	re          *regexp.Regexp
	replacement string
}

// Sanitizer redacts secrets (and, optionally, infrastructure identifiers)
// from free-text log messages before they reach the LLM evidence pack or
// chat tool results (§7).
type Sanitizer struct {
	secretPatterns []secretPattern
	infraPatterns  []secretPattern
}

// NewSanitizer builds a Sanitizer with the standard pattern set: JWTs,
// connection-string userinfo, key=value credentials, vendor API key
// prefixes and emails as secrets; IPv4 addresses as infrastructure.
//
// Order matters: the JWT and connection-string patterns must run before the
// generic key=value one, or "token: <jwt>" would get partially consumed by
// the narrower key=value value-class and leave fragments behind.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		secretPatterns: []secretPattern{
			{re: regexp.MustCompile(`[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), replacement: redactedMarker},
			{re: regexp.MustCompile(`(://)[^/\s@]+@`), replacement: "${1}" + redactedMarker + "@"},
			{re: regexp.MustCompile(`(?i)\b(password|passwd|pwd|api[_-]?key|apikey|secret|access[_-]?key|secret[_-]?key|token)\b"?\s*[:=]\s*"?([^"&,}\s]+)"?`), replacement: "${1}: " + redactedMarker},
			{re: regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{10,}\b`), replacement: redactedMarker},
			{re: regexp.MustCompile(`\bghp_[A-Za-z0-9]{10,}\b`), replacement: redactedMarker},
			{re: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z0-9]{2,}`), replacement: redactedMarker},
		},
		infraPatterns: []secretPattern{
			{re: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), replacement: redactedMarker},
		},
	}
}

// Sanitize redacts every secret and infrastructure pattern (the strict mode,
// reached through RedactText with redactInfrastructure set).
func (s *Sanitizer) Sanitize(text string) string {
	return s.sanitize(text, true)
}

// SanitizeSecretsOnly redacts secrets but leaves IPs/hostnames intact. This
// is the default used for the LLM evidence pack (§7: "redact secrets,
// preserve infrastructure names").
func (s *Sanitizer) SanitizeSecretsOnly(text string) string {
	return s.sanitize(text, false)
}

func (s *Sanitizer) sanitize(text string, includeInfra bool) string {
	if text == "" {
		return text
	}
	out := text
	for _, p := range s.secretPatterns {
		out = p.re.ReplaceAllString(out, p.replacement)
	}
	if includeInfra {
		for _, p := range s.infraPatterns {
			out = p.re.ReplaceAllString(out, p.replacement)
		}
	}
	return out
}

// SanitizeWithFallback runs Sanitize, recovering from any regex-engine panic
// (e.g. catastrophic backtracking on adversarial input) and degrading to
// SafeFallback rather than letting a malformed message escape unredacted or
// crash the caller.
func (s *Sanitizer) SanitizeWithFallback(text string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = s.SafeFallback(text)
			err = fmt.Errorf("sanitizer panic recovered: %v", r)
		}
	}()
	return s.Sanitize(text), nil
}

// SafeFallback redacts using plain substring matching only (no regex), used
// when the primary sanitizer fails. After each known secret-bearing key it
// skips any spaces, ':', '=' or '"' and blanks everything up to the next
// space or newline; text after that is kept.
func (s *Sanitizer) SafeFallback(text string) string {
	lower := strings.ToLower(text)
	for _, key := range []string{"password", "passwd", "pwd", "apikey", "api_key", "api-key", "secret", "token", "access_key", "secret_key"} {
		searchFrom := 0
		for {
			rel := strings.Index(lower[searchFrom:], key)
			if rel == -1 {
				break
			}
			idx := searchFrom + rel
			sep := idx + len(key)
			for sep < len(text) && (text[sep] == ' ' || text[sep] == ':' || text[sep] == '=' || text[sep] == '"') {
				sep++
			}
			end := sep
			for end < len(text) && text[end] != ' ' && text[end] != '\n' {
				end++
			}
			if end > sep {
				text = text[:sep] + redactedMarker + text[end:]
				lower = strings.ToLower(text)
			}
			searchFrom = sep + len(redactedMarker)
		}
	}
	return text
}

var defaultSanitizer = NewSanitizer()

// RedactText is the package-level entry point used by pkg/tools' log-entry
// redaction of tool results. It mirrors
// redact_text's default: redact secrets, preserve infrastructure names,
// unless redactInfrastructure is set.
func RedactText(s string, redactInfrastructure bool) string {
	if redactInfrastructure {
		return defaultSanitizer.Sanitize(s)
	}
	return defaultSanitizer.SanitizeSecretsOnly(s)
}
