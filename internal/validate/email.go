// Package validate holds input predicates that need no I/O.
package validate

import "regexp"

// emailPattern accepts a dotted or quoted local part and a domain with a
// top-level label of at least two characters.
var emailPattern = regexp.MustCompile(`(?i)^(([^<>()\[\].,;:\s@"]+(\.[^<>()\[\].,;:\s@"]+)*)|(".+"))@(([^<>()\[\].,;:\s@"]+\.)+[^<>()\[\\.,;:\s@"]{2,})$`)

// Email reports whether s looks like a deliverable address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}
