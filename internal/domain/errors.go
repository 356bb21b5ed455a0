package domain

import "errors"

// Error classes. Handlers map them to status codes with errors.Is; anything
// else is treated as a storage failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a client-facing failure belonging to one of the error classes
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrProductNotFound     = &Error{Kind: ErrNotFound, Message: "Product not found"}
	ErrCategoryNotFound    = &Error{Kind: ErrNotFound, Message: "Category not found"}
	ErrCategoryHasProducts = &Error{Kind: ErrConflict, Message: "Cannot delete category with associated products"}
	ErrNameRequired        = &Error{Kind: ErrValidation, Message: "Name is required"}
	ErrInvalidPrice        = &Error{Kind: ErrValidation, Message: "Price must be a positive number"}
	ErrPricePrecision      = &Error{Kind: ErrValidation, Message: "Price must have at most 2 decimal places"}
	ErrInvalidStock        = &Error{Kind: ErrValidation, Message: "Stock must not be negative"}
	ErrInvalidSold         = &Error{Kind: ErrValidation, Message: "Sold must not be negative"}
)
