package entities

import (
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

// Chapter is an ordered sub-entity of a book, cascade-deleted with its
// parent. OrderNumber is unique within a book.
type Chapter struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BookID      uint      `gorm:"index:idx_chapters_book_order,unique" json:"bookId"`
	OrderNumber int       `gorm:"index:idx_chapters_book_order,unique" json:"orderNumber"`
	Title       string    `gorm:"size:512" json:"title"`
	ArabicTitle string    `gorm:"size:512" json:"arabicTitle,omitempty"`
	Content     string    `gorm:"type:text" json:"content"`
	ArabicText  string    `gorm:"type:text" json:"arabicText,omitempty"`
	Pages       int       `gorm:"default:0" json:"pages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Normalize trims string fields.
func (ch *Chapter) Normalize() {
	ch.Title = strings.TrimSpace(ch.Title)
	ch.ArabicTitle = strings.TrimSpace(ch.ArabicTitle)
	ch.Content = strings.TrimSpace(ch.Content)
	ch.ArabicText = strings.TrimSpace(ch.ArabicText)
}

// Validate checks required fields.
func (ch *Chapter) Validate() error {
	var fields, msgs []string
	if ch.BookID == 0 {
		fields = append(fields, "book")
		msgs = append(msgs, "please specify which book this chapter belongs to")
	}
	if ch.Title == "" {
		fields = append(fields, "title")
		msgs = append(msgs, "please provide a chapter title")
	}
	if ch.OrderNumber <= 0 {
		fields = append(fields, "orderNumber")
		msgs = append(msgs, "please provide the chapter order number")
	}
	if ch.Content == "" {
		fields = append(fields, "content")
		msgs = append(msgs, "please provide the chapter content")
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields, msgs)
	}
	return nil
}
