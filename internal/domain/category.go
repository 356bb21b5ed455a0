package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the catalog
type Category struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Image       *string    `json:"image" db:"image"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	Products    []*Product `json:"products,omitempty" db:"-"`
}

// CategoryCreateInput lists the fields settable when a category is created
type CategoryCreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// CategoryUpdateInput is a partial update. Absent fields are left unchanged;
// Description and Image may be explicitly cleared with null.
type CategoryUpdateInput struct {
	Name        Optional[string] `json:"name,omitzero"`
	Description Nullable[string] `json:"description,omitzero"`
	Image       Nullable[string] `json:"image,omitzero"`
}

// Apply merges the provided fields into c
func (in CategoryUpdateInput) Apply(c *Category) {
	if name, ok := in.Name.Get(); ok {
		c.Name = name
	}
	if in.Description.IsSet() {
		c.Description = in.Description.Ptr()
	}
	if in.Image.IsSet() {
		c.Image = in.Image.Ptr()
	}
}
