package page

// PageID identifies one of the logical pages the presentation layer can show.
type PageID string

const (
	Home          PageID = "home"
	Login         PageID = "login"
	About         PageID = "about"
	Contact       PageID = "contact"
	Signup        PageID = "signup"
	Insights      PageID = "insights"
	Resources     PageID = "resources"
	Profile       PageID = "profile"
	Features      PageID = "features"
	Privacy       PageID = "privacy"
	Terms         PageID = "terms"
	Dashboard     PageID = "dashboard"
	Chat          PageID = "chat"
	Visualization PageID = "visualization"
)

var known = map[PageID]bool{
	Home:          true,
	Login:         true,
	About:         true,
	Contact:       true,
	Signup:        true,
	Insights:      true,
	Resources:     true,
	Profile:       true,
	Features:      true,
	Privacy:       true,
	Terms:         true,
	Dashboard:     true,
	Chat:          true,
	Visualization: true,
}

// Pages requiring an authenticated session.
var protected = map[PageID]bool{
	Dashboard: true,
	Chat:      true,
	Insights:  true,
	Profile:   true,
}

// Parse coerces an arbitrary navigation target to a known page. Navigation
// targets arrive from outside the core and are untrusted, so anything
// unrecognized falls back to the home page instead of failing.
func Parse(raw string) PageID {
	p := PageID(raw)
	if known[p] {
		return p
	}
	return Home
}

// Protected reports whether the page is only reachable with an
// authenticated session.
func (p PageID) Protected() bool {
	return protected[p]
}

// String returns the page identifier as sent to the presentation layer.
func (p PageID) String() string {
	return string(p)
}

// All returns every known page identifier.
func All() []PageID {
	pages := make([]PageID, 0, len(known))
	for p := range known {
		pages = append(pages, p)
	}
	return pages
}
