package resolve

import (
	"regexp"
	"strings"
)

// identifierPattern is the full shape an identifier arriving from a route
// path segment may take: a 5-8 character alphanumeric run, optionally
// followed by a dot and a 3-4 character extension. Anchored on both ends;
// containing a matching substring is not enough.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9]{5,8}(\.[A-Za-z0-9]{3,4})?$`)

// ValidIdentifier reports whether id is safe to interpolate into an
// outbound request URL or a local path.
//
// The traversal checks are redundant with the anchored pattern today; they
// stay as a second line of defense in case the shape grammar is ever
// loosened.
func ValidIdentifier(id string) bool {
	if strings.Contains(id, "..") {
		return false
	}
	if strings.ContainsAny(id, `/\`) {
		return false
	}
	return identifierPattern.MatchString(id)
}
