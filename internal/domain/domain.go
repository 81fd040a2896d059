package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type Advertisement struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Author      string    `json:"author" db:"author"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateAdvertisementInput is the POST body. Required fields are pointers so
// that a missing key can be told apart from a zero value.
type CreateAdvertisementInput struct {
	Title       *string  `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required"`
	Author      *string  `json:"author" validate:"required"`
}

// UpdateAdvertisementInput is the PATCH body. Only fields whose key appears in
// the body are applied.
type UpdateAdvertisementInput struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[string]  `json:"description"`
	Price       Optional[float64] `json:"price"`
	Author      Optional[string]  `json:"author"`
}

// Empty reports whether no field was supplied.
func (in UpdateAdvertisementInput) Empty() bool {
	return !in.Title.Set && !in.Description.Set && !in.Price.Set && !in.Author.Set
}

type SearchFilter struct {
	Title    *string
	Author   *string
	PriceMin *float64
	PriceMax *float64
}

// Optional tracks whether a JSON key was present and whether it held null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil for an explicit null, otherwise a pointer to the value.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}
