package models

// User is the profile carried by the identity token, plus the id the
// application assigned to it.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Subject string `json:"sub,omitempty"`
}
