package redact

import (
	"net/url"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys, including project keys
	regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
}

// queryParamPattern matches secret query parameters inside URLs embedded in
// error text; group 1 keeps the parameter name.
var queryParamPattern = regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey|token|access_token|signature|x-amz-signature|x-amz-credential|x-goog-signature)=)[^&\s"']+`)

// Secrets replaces detected secrets in text with [REDACTED]. Query
// parameter names are kept so the text stays readable.
func Secrets(text string) string {
	result := queryParamPattern.ReplaceAllString(text, "${1}"+placeholder)
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// sensitiveParams are query parameters whose values are never logged.
var sensitiveParams = map[string]bool{
	"key":                  true,
	"api_key":              true,
	"apikey":               true,
	"token":                true,
	"access_token":         true,
	"signature":            true,
	"x-amz-signature":      true,
	"x-amz-credential":     true,
	"x-amz-security-token": true,
	"x-goog-signature":     true,
}

// URL returns raw with any userinfo password and sensitive query parameter
// values replaced. Unparseable input is passed through Secrets instead.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Secrets(raw)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), placeholder)
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k := range q {
			if sensitiveParams[strings.ToLower(k)] {
				q.Set(k, placeholder)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	s := u.String()
	// url.String escapes the brackets of the placeholder.
	s = strings.ReplaceAll(s, url.QueryEscape(placeholder), placeholder)
	s = strings.ReplaceAll(s, url.PathEscape(placeholder), placeholder)
	return s
}
