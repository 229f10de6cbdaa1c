package models

// StorablePlaceholder is the persisted projection of a successful
// entry: metadata only, never content. Rehydrating one yields a
// display-only entry that can be shown and removed but not re-uploaded.
type StorablePlaceholder struct {
	ID         string
	Name       string
	Size       int64
	MIME       string
	Kind       Kind
	PreviewURL string
	Position   int
}

// ToPlaceholder projects a successful entry for persistence.
func (e *Entry) ToPlaceholder(position int) StorablePlaceholder {
	return StorablePlaceholder{
		ID:         e.ID,
		Name:       e.File.Name,
		Size:       e.File.Size,
		MIME:       e.File.MIME,
		Kind:       e.Kind,
		PreviewURL: e.PreviewURL,
		Position:   position,
	}
}

// ToEntry rehydrates a persisted placeholder into a success entry with
// an empty content blob of the recorded size.
func (p StorablePlaceholder) ToEntry() *Entry {
	return &Entry{
		ID:         p.ID,
		File:       NewPlaceholderFileRef(p.Name, p.MIME, p.Size),
		Kind:       p.Kind,
		Status:     StatusSuccess,
		Progress:   100,
		PreviewURL: p.PreviewURL,
		RemoteURL:  p.PreviewURL,
	}
}
