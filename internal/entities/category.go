package entities

import (
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

// Category classifies books. BookCount is a cached aggregate maintained
// transactionally with every book mutation; the delete guard recomputes it
// from the books table so drift can never block or permit the wrong delete.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:256" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:128" json:"icon"`
	Featured    bool   `gorm:"default:false" json:"featured"`
	BookCount   int64  `gorm:"default:0" json:"bookCount"`

	// Featured-book pointer with a denormalized title snapshot. The snapshot
	// is not refreshed when the book is later renamed.
	FeaturedBookID    *uint  `json:"featuredBookId,omitempty"`
	FeaturedBookTitle string `gorm:"size:512" json:"featuredBookTitle,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims string fields.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Icon = strings.TrimSpace(c.Icon)
}

// Validate checks required fields.
func (c *Category) Validate() error {
	var fields, msgs []string
	if c.Name == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "please provide a category name")
	}
	if c.Description == "" {
		fields = append(fields, "description")
		msgs = append(msgs, "please provide a category description")
	}
	if c.Icon == "" {
		fields = append(fields, "icon")
		msgs = append(msgs, "please provide an icon for the category")
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields, msgs)
	}
	return nil
}
