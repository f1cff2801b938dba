package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	IsAdmin  bool   `json:"isAdmin"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// createSweetRequest uses pointers for the numeric fields so a missing
// field and an explicit zero are distinguishable.
type createSweetRequest struct {
	Name     string   `json:"name"     validate:"required"`
	Category string   `json:"category" validate:"required"`
	Price    *float64 `json:"price"    validate:"required,gte=0"`
	Quantity *int64   `json:"quantity" validate:"required,gte=0"`
}

// updateSweetRequest is a partial update; absent fields keep their value.
type updateSweetRequest struct {
	Name     *string  `json:"name"     validate:"omitempty,min=1"`
	Category *string  `json:"category" validate:"omitempty,min=1"`
	Price    *float64 `json:"price"    validate:"omitempty,gte=0"`
	Quantity *int64   `json:"quantity" validate:"omitempty,gte=0"`
}

type purchaseRequest struct {
	Quantity *int64 `json:"quantity" validate:"omitempty,gt=0"`
}

type restockRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes.

// userResponse exposes only the public identity fields; the credential
// hash never leaves the service layer.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type sweetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type stockResponse struct {
	Message string        `json:"message"`
	Sweet   sweetResponse `json:"sweet"`
}

type deleteResponse struct {
	Message string `json:"message"`
}
