package factory

import (
	"strings"

	"github.com/umisama/go-regexpcache"
)

// mentionRegexp matches a @username that is not already inside backticks
// and not part of a word or an email address.
const mentionRegexp = "(^|[^`\\w@])(@[\\w.-]+)"

// quoteMentions wraps @mentions in backticks, imported free text
// must not trigger notifications on the destination instance.
func quoteMentions(text string) string {
	if !strings.Contains(text, "@") {
		return text
	}

	return regexpcache.MustCompile(mentionRegexp).ReplaceAllString(text, "$1`$2`")
}
