package services

import "strings"

// Slugify lower-cases s and joins its ASCII letter and digit runs with
// single hyphens. Anything else, including non-ASCII letters, separates
// words. The result may be empty.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// validSlug reports whether s is already in Slugify form.
func validSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
