package domain

// Manifest field names the pipeline narrows rows on.
const (
	FieldIndex = "index"
	FieldID    = "id"
	FieldURL   = "url"
)

// Row is one manifest data row keyed by header name.
// A nil value marks a field that was present in the header but empty in the row.
type Row map[string]*string

// Get returns the value for field and whether it is present and non-empty.
func (r Row) Get(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// RawRecord is a manifest row narrowed into typed fields.
type RawRecord struct {
	// Row is the 1-based position of the data row in the manifest,
	// counted after blank lines are discarded.
	Row int

	// Index is the manifest's own index column. It is passed through as
	// supplied and may disagree with Row.
	Index int

	// ID identifies the record in the document store.
	ID string

	// URL is the remote image resource. Empty means absent.
	URL string
}

// WorkingEntity is the record carried through fetch and resize.
// Before fetching URL is set and Thumbnail is nil; after a successful fetch
// URL is cleared and Thumbnail holds the resized bytes.
type WorkingEntity struct {
	Index     int
	ID        string
	URL       string
	Thumbnail []byte
}

// HasURL reports whether the entity still references a resource to fetch.
func (e WorkingEntity) HasURL() bool {
	return e.URL != ""
}

// HasThumbnail reports whether the entity carries a resized image.
func (e WorkingEntity) HasThumbnail() bool {
	return len(e.Thumbnail) > 0
}

// WithThumbnail returns a copy of e holding thumb with the URL cleared.
func (e WorkingEntity) WithThumbnail(thumb []byte) WorkingEntity {
	e.URL = ""
	e.Thumbnail = thumb
	return e
}

// PersistableImage is the subset of a WorkingEntity written to storage.
// Thumbnail is never empty.
type PersistableImage struct {
	ID        string `json:"id" bson:"id"`
	Index     int    `json:"index" bson:"index"`
	Thumbnail []byte `json:"thumbnail" bson:"thumbnail"`
}

// ToPersistable projects an entity into a PersistableImage.
// The second result is false when the entity has no thumbnail.
func (e WorkingEntity) ToPersistable() (PersistableImage, bool) {
	if !e.HasThumbnail() {
		return PersistableImage{}, false
	}
	return PersistableImage{ID: e.ID, Index: e.Index, Thumbnail: e.Thumbnail}, true
}
