// Package contact pulls contact details out of raw resume text with regular expressions.
package contact

import "regexp"

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// Optional country code, then ten digits as 555-123-4567, (555) 123 4567, 555.123.4567 or 5551234567.
	// The number must not touch other digits and never spans lines. Group 1 is the number.
	phoneRe = regexp.MustCompile(`(?:^|[^\d+])((?:\+\d{1,3}[-. ]?)?(?:\(\d{3}\)|\d{3})[-. ]?\d{3}[-. ]?\d{4})(?:[^\d]|$)`)
	urlRe   = regexp.MustCompile(`(https?://)?(www\.)?([-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6})\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)`)
)

// Details holds everything the regex pass found.
type Details struct {
	Email string
	Phone string
	URLs  []string
}

// Extract runs all patterns over text.
func Extract(text string) Details {
	return Details{
		Email: Email(text),
		Phone: Phone(text),
		URLs:  URLs(text),
	}
}

// Email returns the first email address in text, or "".
func Email(text string) string {
	return emailRe.FindString(text)
}

// Phone returns the first complete phone number match in text, or "".
func Phone(text string) string {
	m := phoneRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// URLs returns every match that carries a scheme or a www prefix, in text order.
// Bare domains (and email addresses) are skipped. Duplicates are kept.
func URLs(text string) []string {
	urls := make([]string, 0)
	for _, m := range urlRe.FindAllStringSubmatch(text, -1) {
		scheme, www, domain, path := m[1], m[2], m[3], m[4]
		if scheme == "" && www == "" {
			continue
		}
		urls = append(urls, scheme+www+domain+path)
	}
	return urls
}
