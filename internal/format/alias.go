package format

import (
	"fmt"
	"strings"
)

// strippedChars are removed outright before slugging.
const strippedChars = "'\"`=+*&^%$#@!<>?"

// Slugify lowercases s, drops the stripped punctuation set and collapses
// runs of separator characters into single hyphens. Pure: equal inputs yield
// byte-identical output.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if strings.ContainsRune(strippedChars, r) {
			continue
		}
		if isSeparator(r) {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', ',', ';', ':', '/', '|', '\\', '-', '[', ']', '{', '}', '(', ')':
		return true
	default:
		return false
	}
}

// FormatAlias builds the canonical URL alias for an identity. Subject and
// title segments are omitted entirely when absent.
func FormatAlias(subject *string, id int64, title *string) string {
	var b strings.Builder
	if subject != nil {
		b.WriteByte('/')
		b.WriteString(Slugify(*subject))
	}
	b.WriteByte('/')
	b.WriteString(fmt.Sprintf("%d", id))
	if title != nil {
		b.WriteByte('/')
		b.WriteString(Slugify(*title))
	}
	return b.String()
}

// RevisionAlias is the fixed alias shape of entity revisions; they never go
// through FormatAlias.
func RevisionAlias(repositoryID, revisionID int64) string {
	return fmt.Sprintf("/entity/repository/compare/%d/%d", repositoryID, revisionID)
}
