// Package directory holds the portal's static content: mobile-ID issuance
// links, the catalog of places reported to accept mobile IDs, and the
// community board posts.
package directory

import "strings"

// Card kinds.
const (
	KindLink = "link"
	KindNav  = "nav"
)

// IssuanceLink is one card on the main screen. Link cards carry Href, nav
// cards name the View they open.
type IssuanceLink struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Title string `json:"title"`
	Href  string `json:"href,omitempty"`
	View  string `json:"view,omitempty"`
	Icon  string `json:"icon"`
	Theme string `json:"theme"`
}

// Accepts records which mobile IDs a place is reported to accept.
type Accepts struct {
	ResidentID      bool `json:"residentID"`
	DriverLicense   bool `json:"driverLicense"`
	HealthInsurance bool `json:"healthInsurance"`
}

// Report is one user report of trying a mobile ID at a place.
type Report struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TS      string `json:"ts"`
}

// Place is a catalog entry.
type Place struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Accepts Accepts  `json:"accepts"`
	Reports []Report `json:"reports"`
}

// CommunityPost is a post on the usage-sharing board.
type CommunityPost struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Date   string `json:"date"`
	Body   string `json:"body"`
}

// Directory serves the static content.
type Directory struct {
	cards  []IssuanceLink
	places []Place
	posts  []CommunityPost
}

// New returns the built-in directory.
func New() *Directory {
	return &Directory{cards: cards, places: places, posts: posts}
}

// Cards returns every main-screen card in display order.
func (d *Directory) Cards() []IssuanceLink {
	return append([]IssuanceLink(nil), d.cards...)
}

// IssuanceLinks returns only the external issuance cards.
func (d *Directory) IssuanceLinks() []IssuanceLink {
	out := make([]IssuanceLink, 0, len(d.cards))
	for _, c := range d.cards {
		if c.Kind == KindLink {
			out = append(out, c)
		}
	}
	return out
}

// SearchPlaces returns the places whose name contains q, ignoring case and
// surrounding space. An empty query matches nothing.
func (d *Directory) SearchPlaces(q string) []Place {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []Place{}
	if q == "" {
		return out
	}
	for _, p := range d.places {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// Place returns the place with the given id.
func (d *Directory) Place(id string) (Place, bool) {
	for _, p := range d.places {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}

// Posts returns the community posts, newest first.
func (d *Directory) Posts() []CommunityPost {
	return append([]CommunityPost(nil), d.posts...)
}
