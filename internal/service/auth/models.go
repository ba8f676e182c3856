package auth

type User struct {
	Id        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Providers []string `json:"providers,omitempty"`
}
