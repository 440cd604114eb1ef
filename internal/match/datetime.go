package match

import "regexp"

// Pure date/time literals (timestamps on posts, comment ages) must not
// be classified at all: they are never unsafe and they churn constantly.
var dateTimePatterns = []*regexp.Regexp{
	// 12/05/2024, 12-05-24, 2024-05-12
	regexp.MustCompile(`^\d{1,4}[/\-.]\d{1,2}[/\-.]\d{1,4}$`),
	// 5:30, 05:30:12, 5:30 pm
	regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?\s*(am|pm)?$`),
	// may 12, 2024 / 12 may 2024 / may 12
	regexp.MustCompile(`^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(,?\s+\d{2,4})?$`),
	regexp.MustCompile(`^\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(\s+\d{2,4})?$`),
	// relative ages: 3h, 2d ago, 15 minutes ago, just now
	regexp.MustCompile(`^\d+\s*(s|m|h|d|w|mo|y|sec|min|mins|minute|minutes|hour|hours|day|days|week|weeks|month|months|year|years)(\s+ago)?$`),
	regexp.MustCompile(`^(just now|yesterday|today|tomorrow)(\s+at\s+\d{1,2}:\d{2}\s*(am|pm)?)?$`),
}

// isDateTimeLiteral reports whether normalised text is purely a
// date/time literal
func isDateTimeLiteral(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range dateTimePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
