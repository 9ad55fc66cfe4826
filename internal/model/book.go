package model

// Book represents a catalog record as stored in the `books` table. The
// schema is permissive: every field is optional and defaults to its zero
// value. ISBN is the lookup key for updates but the store does not
// enforce its uniqueness.
//
// JSON names match the capitalized field names so existing clients keep
// working unchanged.
type Book struct {
	ID              uint64  `json:"-"`               // books.id (store-native row id)
	ISBN            string  `json:"ISBN"`            // books.isbn
	Title           string  `json:"Title"`           // books.title
	Author          string  `json:"Author"`          // books.author
	Genre           string  `json:"Genre"`           // books.genre
	Publisher       string  `json:"Publisher"`       // books.publisher
	PublicationYear string  `json:"PublicationYear"` // books.publication_year
	Language        string  `json:"Language"`        // books.language
	Format          string  `json:"Format"`          // books.format
	Edition         string  `json:"Edition"`         // books.edition
	Price           float64 `json:"Price"`           // books.price
}

// BookPatch carries a partial update. A nil field means the field was not
// supplied and the stored value must be left untouched.
type BookPatch struct {
	Title           *string
	Author          *string
	Genre           *string
	Publisher       *string
	PublicationYear *string
	Language        *string
	Format          *string
	Edition         *string
	Price           *float64
}

// Apply merges the fields present in p into b and returns the result.
// ISBN is never changed by a patch.
func (p BookPatch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	if p.Format != nil {
		b.Format = *p.Format
	}
	if p.Edition != nil {
		b.Edition = *p.Edition
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	return b
}

// Empty reports whether the patch carries no fields at all.
func (p BookPatch) Empty() bool {
	return p == BookPatch{}
}
