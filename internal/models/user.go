package models

// Holder is the already-authorized identity attached to a booking. It is
// supplied by the OIDC middleware; this service never authenticates.
type Holder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Admin bool   `json:"admin"`
}
