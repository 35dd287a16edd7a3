package book

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"bookreview/internal/media"
)

// ErrVersionConflict is returned by ApplyRating when the book changed since
// it was read.
var ErrVersionConflict = errors.New("book was modified concurrently")

// Rating is one user's grade for a book.
type Rating struct {
	UserID string  `json:"userId"`
	Grade  float64 `json:"grade"`
}

// Book represents a book entity.
type Book struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Year          int       `json:"year"`
	Genre         string    `json:"genre"`
	ImageURL      string    `json:"imageUrl"`
	ImageBlurHash string    `json:"imageBlurHash"`
	Ratings       []Rating  `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	Version       int       `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MarshalJSON also emits the id as "_id", which existing clients read.
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	return json.Marshal(struct {
		LegacyID string `json:"_id"`
		plain
	}{LegacyID: b.ID, plain: plain(b)})
}

// Metadata is the client-writable part of a book.
type Metadata struct {
	Title  string `validate:"required,max=300"`
	Author string `validate:"required,max=200"`
	Year   int    `validate:"gte=0,lte=9999"`
	Genre  string `validate:"required,max=100"`
}

// Patch is a partial metadata update; nil fields are left unchanged.
type Patch struct {
	Title  *string
	Author *string
	Year   *int
	Genre  *string
}

// Apply copies the set fields of p onto m.
func (p Patch) Apply(m *Metadata) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Author != nil {
		m.Author = *p.Author
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	if p.Genre != nil {
		m.Genre = *p.Genre
	}
}

// Metadata returns the client-writable fields of b.
func (b Book) Metadata() Metadata {
	return Metadata{Title: b.Title, Author: b.Author, Year: b.Year, Genre: b.Genre}
}

func (b *Book) setMetadata(m Metadata) {
	b.Title, b.Author, b.Year, b.Genre = m.Title, m.Author, m.Year, m.Genre
}

// UpdateInput is resolved once from the request body: either a metadata
// patch alone or a metadata patch together with a replacement image.
type UpdateInput interface {
	patch() Patch
}

type MetadataUpdate struct {
	Patch Patch
}

type MetadataImageUpdate struct {
	Patch   Patch
	Image   media.Upload
	BaseURL string
}

func (u MetadataUpdate) patch() Patch      { return u.Patch }
func (u MetadataImageUpdate) patch() Patch { return u.Patch }

// CleanID strips quotes and backslashes some clients wrap path ids in.
func CleanID(id string) string {
	id = strings.NewReplacer(`"`, "", `\`, "").Replace(id)
	return strings.TrimSpace(id)
}
