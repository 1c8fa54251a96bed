package models

// Identity is the pseudonymous identity of one installation
type Identity struct {
	ID          string `json:"id" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Color       string `json:"color" validate:"required,hexcolor"`
}
