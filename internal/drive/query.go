package drive

import (
	"regexp"
	"strings"
)

// structuredQueryPatterns recognize Drive query-language constructs. The
// check is a classification, not a parse: a miss degrades to a full-text
// search, never an error.
var structuredQueryPatterns = []*regexp.Regexp{
	// field comparisons: name contains 'x', mimeType = '...', name != '...'
	regexp.MustCompile(`(?i)\b(name|fullText|mimeType|description)\s*(=|!=|\bcontains\b)`),
	// date comparisons
	regexp.MustCompile(`(?i)\b(modifiedTime|createdTime|viewedByMeTime)\s*(<=|>=|<|>|=|!=)`),
	// collection membership: 'folderId' in parents, 'me' in owners
	regexp.MustCompile(`(?i)\bin\s+(parents|owners|writers|readers)\b`),
	// boolean flags
	regexp.MustCompile(`(?i)\b(trashed|starred|sharedWithMe)\s*=\s*(true|false)\b`),
	// custom property lookups
	regexp.MustCompile(`(?i)\b(properties|appProperties)\s+has\s*\{`),
	// explicit boolean operators joining clauses
	regexp.MustCompile(`(?i)\s(and|or)\s`),
	regexp.MustCompile(`(?i)^\s*not\s`),
	regexp.MustCompile(`(?i)\bvisibility\s*=`),
}

// IsStructuredQuery reports whether q looks like a Drive query-language
// expression rather than free text.
func IsStructuredQuery(q string) bool {
	for _, pattern := range structuredQueryPatterns {
		if pattern.MatchString(q) {
			return true
		}
	}
	return false
}

// EscapeQueryTerm backslash-escapes single quotes so a free-text term can be
// embedded in a quoted query clause.
func EscapeQueryTerm(term string) string {
	return strings.ReplaceAll(term, "'", `\'`)
}

// BuildQuery turns a caller-supplied search expression into a final Drive
// query. Structured queries pass through verbatim; free text is escaped and
// wrapped in a fullText clause.
func BuildQuery(query string) string {
	if IsStructuredQuery(query) {
		return query
	}
	return "fullText contains '" + EscapeQueryTerm(query) + "'"
}

// BuildListParams assembles a validated ListQuery for a files.list call.
//
// Corpora resolution: an explicit value wins; otherwise a drive-scoped query
// defaults to "drive"; otherwise the API default applies. A drive-scoped
// query also forces includeAllDrives on, since without it the listing comes
// back empty.
func BuildListParams(query string, pageSize int64, driveID string, includeAllDrives bool, corpora string) ListQuery {
	lq := ListQuery{
		Query:            query,
		PageSize:         pageSize,
		DriveID:          driveID,
		Corpora:          corpora,
		IncludeAllDrives: includeAllDrives,
	}

	if driveID != "" {
		if lq.Corpora == "" {
			lq.Corpora = "drive"
		}
		lq.IncludeAllDrives = true
	}

	return lq
}
