package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,bcryptlen"`
	Role      string `json:"role"      validate:"required,oneof=admin user"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Role is the role the client asks for. It only reaches the token when
	// the server is configured to trust it.
	Role string `json:"role" validate:"omitempty,oneof=admin user"`
}

// userResponse carries the public fields of a user. It never includes the
// password or its digest.
type userResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type loginResponse struct {
	userResponse
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// --- Users ---

type createUserRequest = registerRequest

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"  validate:"omitempty,min=6,bcryptlen"`
	Role      *string `json:"role"      validate:"omitempty,oneof=admin user"`
}

// --- Products ---

type createProductRequest struct {
	Name        string  `json:"name"        validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Quantity    int     `json:"quantity"    validate:"gte=0,lte=2147483647"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price"       validate:"omitempty,gt=0"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0,lte=2147483647"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
