package review

import "regexp"

// Secret patterns redacted from analyzer text before it lands in a public
// comment. Ordered from high-signal token formats down to generic quoted
// assignments so normal auth-related code is not over-redacted.
var (
	reGitHubFineGrained = regexp.MustCompile(`github_pat_[A-Za-z0-9_]{82}`)
	reGitHubToken       = regexp.MustCompile(`gh[opusr]_[A-Za-z0-9]{36}`)
	reOpenAIKey         = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`)
	reGoogleKey         = regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)
	reSecretAssignment  = regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|password|pwd|auth)\b(\s*[:=]\s*)(['"])[^'"\r\n]{8,}['"]`)
)

// Redact replaces secret-looking literals with asterisks. Analyzer output can
// quote the code it flagged, and that code can contain credentials.
func Redact(text string) string {
	if text == "" {
		return text
	}

	text = reGitHubFineGrained.ReplaceAllString(text, "********")
	text = reGitHubToken.ReplaceAllString(text, "********")
	text = reOpenAIKey.ReplaceAllString(text, "********")
	text = reGoogleKey.ReplaceAllString(text, "********")
	text = reSecretAssignment.ReplaceAllString(text, "$1$2$3********$3")
	return text
}
