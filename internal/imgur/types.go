package imgur

// Wire types for the origin's post metadata API
// (GET /post/v1/{media|albums}/{id}?include=media).

type postResponse struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Media []mediaEntry `json:"media"`
}

type mediaEntry struct {
	ID       string        `json:"id"`
	Ext      string        `json:"ext"`
	MimeType string        `json:"mime_type"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Name     string        `json:"name"`
	Metadata mediaMetadata `json:"metadata"`
}

type mediaMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// caption picks the display text for a media entry.
// Fallback chain: description, title, file name, empty.
func (e mediaEntry) caption() string {
	if e.Metadata.Description != "" {
		return e.Metadata.Description
	}
	if e.Metadata.Title != "" {
		return e.Metadata.Title
	}
	return e.Name
}
