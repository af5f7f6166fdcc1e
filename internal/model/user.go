package model

// User is an authenticated account as returned by the auth service on
// login or signup. The Token is a bearer token presented to the order
// gateway on every request.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}
