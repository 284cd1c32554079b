package http

import (
	"fmt"
	"regexp"
)

// MaxLoggedResponseLength caps response text included in logs so source code
// and secrets never reach log aggregators wholesale.
const MaxLoggedResponseLength = 200

// TruncateForLogging returns the first MaxLoggedResponseLength characters of
// a response plus a truncation indicator if anything was cut.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=[^&"\s]+`),
	regexp.MustCompile(`apiKey=[^&"\s]+`),
	regexp.MustCompile(`api_key=[^&"\s]+`),
	regexp.MustCompile(`token=[^&"\s]+`),
	regexp.MustCompile(`access_token=[^&"\s]+`),
}

// RedactURLSecrets redacts API keys and tokens from URLs embedded in error
// messages. The Gemini endpoint carries the key as a query parameter, so any
// error containing the request URL would otherwise leak it.
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, re := range urlSecretPatterns {
		param := re.String()[:len(re.String())-len(`=[^&"\s]+`)]
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}
	return result
}
