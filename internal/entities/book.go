package entities

import (
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

type Language string

const (
	LanguageArabic  Language = "Arabic"
	LanguageEnglish Language = "English"
	LanguageHausa   Language = "Hausa"
	LanguageYoruba  Language = "Yoruba"
	LanguageFrench  Language = "French"
	LanguageOther   Language = "Other"
)

// ValidLanguage reports whether l is one of the supported catalog languages.
func ValidLanguage(l Language) bool {
	switch l {
	case LanguageArabic, LanguageEnglish, LanguageHausa, LanguageYoruba,
		LanguageFrench, LanguageOther:
		return true
	}
	return false
}

// Book is a catalog entry. AvailableCopies never exceeds TotalCopies and
// neither goes negative; both are adjusted only inside circulation
// transactions.
type Book struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Title         string   `gorm:"index;size:512" json:"title"`
	ArabicTitle   string   `gorm:"size:512" json:"arabicTitle,omitempty"`
	Author        string   `gorm:"index;size:256" json:"author"`
	ScholarID     uint     `gorm:"index" json:"scholarId"`
	ISBN          *string  `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	CategoryID    uint     `gorm:"index" json:"categoryId"`
	Language      Language `gorm:"size:20;default:'Arabic'" json:"language"`
	PublishedYear int      `json:"publishedYear,omitempty"`
	Publisher     string   `gorm:"size:256" json:"publisher,omitempty"`
	Description   string   `gorm:"type:text" json:"description"`
	CoverImage    string   `gorm:"size:1024" json:"coverImage,omitempty"`
	FileURL       string   `gorm:"size:1024" json:"fileUrl,omitempty"`

	TotalCopies     int `json:"totalCopies"`
	AvailableCopies int `json:"availableCopies"`

	Shelf   string `gorm:"size:64" json:"shelf,omitempty"`
	Section string `gorm:"size:64" json:"section,omitempty"`

	Downloads int  `gorm:"default:0" json:"downloads"`
	Featured  bool `gorm:"default:false" json:"featured"`

	Scholar  *Scholar  `gorm:"foreignKey:ScholarID" json:"scholar,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// Populated on demand from the loans table, not stored on the row.
	Borrowers []Loan `gorm:"-" json:"borrowers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims string fields.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.ArabicTitle = strings.TrimSpace(b.ArabicTitle)
	b.Author = strings.TrimSpace(b.Author)
	if b.ISBN != nil {
		isbn := strings.TrimSpace(*b.ISBN)
		if isbn == "" {
			// Stored as NULL so books without an ISBN never collide on the
			// unique index.
			b.ISBN = nil
		} else {
			b.ISBN = &isbn
		}
	}
	b.Publisher = strings.TrimSpace(b.Publisher)
	b.Description = strings.TrimSpace(b.Description)
	b.Shelf = strings.TrimSpace(b.Shelf)
	b.Section = strings.TrimSpace(b.Section)
}

// Validate checks required fields, the language enum and copy-count bounds.
func (b *Book) Validate() error {
	var fields, msgs []string
	if b.Title == "" {
		fields = append(fields, "title")
		msgs = append(msgs, "please provide a book title")
	}
	if b.Author == "" {
		fields = append(fields, "author")
		msgs = append(msgs, "please provide an author name")
	}
	if b.ScholarID == 0 {
		fields = append(fields, "scholar")
		msgs = append(msgs, "please specify which scholar authored this book")
	}
	if b.CategoryID == 0 {
		fields = append(fields, "category")
		msgs = append(msgs, "please specify a category for this book")
	}
	if b.Description == "" {
		fields = append(fields, "description")
		msgs = append(msgs, "please provide a book description")
	}
	if b.Language != "" && !ValidLanguage(b.Language) {
		fields = append(fields, "language")
		msgs = append(msgs, "unsupported language")
	}
	if b.TotalCopies < 0 || b.AvailableCopies < 0 {
		fields = append(fields, "copies")
		msgs = append(msgs, "copy counts must not be negative")
	} else if b.AvailableCopies > b.TotalCopies {
		fields = append(fields, "availableCopies")
		msgs = append(msgs, "available copies cannot exceed total copies")
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields, msgs)
	}
	return nil
}
