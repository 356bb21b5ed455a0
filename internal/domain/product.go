package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a price may carry
const PriceScale = 2

// LowStockThreshold is the stock level below which a product counts as low stock
const LowStockThreshold = 10

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       *string         `json:"image" db:"image"`
	Stock       int             `json:"stock" db:"stock"`
	Sold        int             `json:"sold" db:"sold"`
	IsActive    bool            `json:"isActive" db:"is_active"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	CategoryID  uuid.UUID       `json:"categoryId" db:"category_id"`
	Category    *Category       `json:"category,omitempty" db:"-"`
}

// ProductCreateInput lists the fields settable when a product is created.
// Nil Stock defaults to 0 and nil IsActive defaults to true.
type ProductCreateInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
	CategoryID  uuid.UUID       `json:"categoryId"`
}

// ProductUpdateInput is a partial update of a product
type ProductUpdateInput struct {
	Name        Optional[string]          `json:"name,omitzero"`
	Description Nullable[string]          `json:"description,omitzero"`
	Price       Optional[decimal.Decimal] `json:"price,omitzero"`
	Image       Nullable[string]          `json:"image,omitzero"`
	Stock       Optional[int]             `json:"stock,omitzero"`
	Sold        Optional[int]             `json:"sold,omitzero"`
	IsActive    Optional[bool]            `json:"isActive,omitzero"`
	CategoryID  Optional[uuid.UUID]       `json:"categoryId,omitzero"`

	// set when the decoded price was a JSON string
	priceNotNumber bool
}

// ValidatePrice requires a positive price with at most PriceScale decimals
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if !price.Equal(price.Round(PriceScale)) {
		return ErrPricePrecision
	}
	return nil
}

// PriceIsString reports whether the price member of a JSON object is a
// string. decimal.Decimal decodes quoted numbers, prices must be numbers.
func PriceIsString(data []byte) bool {
	var fields struct {
		Price json.RawMessage `json:"price"`
	}
	if json.Unmarshal(data, &fields) != nil {
		return false
	}
	raw := bytes.TrimSpace(fields.Price)
	return len(raw) > 0 && raw[0] == '"'
}

func (in *ProductUpdateInput) UnmarshalJSON(data []byte) error {
	type fields ProductUpdateInput
	var decoded fields
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*in = ProductUpdateInput(decoded)
	in.priceNotNumber = PriceIsString(data)
	return nil
}

// Validate checks the provided fields without consulting storage
func (in ProductUpdateInput) Validate() error {
	if name, ok := in.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if in.priceNotNumber {
		return ErrInvalidPrice
	}
	if price, ok := in.Price.Get(); ok {
		if err := ValidatePrice(price); err != nil {
			return err
		}
	}
	if stock, ok := in.Stock.Get(); ok && stock < 0 {
		return ErrInvalidStock
	}
	if sold, ok := in.Sold.Get(); ok && sold < 0 {
		return ErrInvalidSold
	}
	return nil
}

// Apply merges the provided fields into p. The resolved Category is not
// touched; callers reload it when CategoryID changes.
func (in ProductUpdateInput) Apply(p *Product) {
	if v, ok := in.Name.Get(); ok {
		p.Name = v
	}
	if in.Description.IsSet() {
		p.Description = in.Description.Ptr()
	}
	if v, ok := in.Price.Get(); ok {
		p.Price = v
	}
	if in.Image.IsSet() {
		p.Image = in.Image.Ptr()
	}
	if v, ok := in.Stock.Get(); ok {
		p.Stock = v
	}
	if v, ok := in.Sold.Get(); ok {
		p.Sold = v
	}
	if v, ok := in.IsActive.Get(); ok {
		p.IsActive = v
	}
	if v, ok := in.CategoryID.Get(); ok {
		p.CategoryID = v
	}
}
