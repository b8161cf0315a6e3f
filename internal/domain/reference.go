// Package domain defines the core types shared by the imgur-proxy service.
package domain

// Kind enumerates the content types a classified URL can resolve to.
type Kind string

const (
	// KindImage is a single image referenced by bare ID (imgur.com/<id>).
	KindImage Kind = "image"
	// KindAlbum is a multi-image album (/a/ and /gallery/ URLs both
	// resolve here, they share rendering).
	KindAlbum Kind = "album"
	// KindDirect is a CDN file referenced with an extension
	// (i.imgur.com/<id>.<ext>).
	KindDirect Kind = "direct"
)

// ContentReference is the classifier's output: what a URL points at and the
// identifier it encodes. The identifier is drawn only from the matched
// portion of a validated-domain URL and is never empty. Values are
// constructed fresh per classification and never mutated.
type ContentReference struct {
	Kind Kind
	ID   string
}

// CanonicalPath returns the path under this proxy that serves the reference.
func (r ContentReference) CanonicalPath() string {
	switch r.Kind {
	case KindAlbum:
		return "/a/" + r.ID
	case KindDirect:
		return "/i/" + r.ID
	default:
		return "/" + r.ID
	}
}

// AllowedDomains is the immutable set of hostnames considered to belong to
// the origin service. Built once at startup; membership is an exact string
// match against a URL's parsed authority, never a substring search.
type AllowedDomains struct {
	hosts map[string]struct{}
}

// NewAllowedDomains builds the set from a list of bare hostnames.
func NewAllowedDomains(hosts []string) *AllowedDomains {
	m := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		m[h] = struct{}{}
	}
	return &AllowedDomains{hosts: m}
}

// Contains reports whether host is a member of the set.
func (d *AllowedDomains) Contains(host string) bool {
	_, ok := d.hosts[host]
	return ok
}

// MediaItem is a displayable record mapped from one origin media entry.
// URL re-enters this proxy at /i/{id}.{ext} rather than pointing at the
// origin CDN.
type MediaItem struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Caption  string `json:"caption"`
	MimeType string `json:"mime_type"`
}

// Post is the origin metadata for a single media post or album.
type Post struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Media []MediaItem `json:"media"`
}
