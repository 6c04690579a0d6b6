package domain

// User is an account record. Email is the unique, case-sensitive key.
// Password holds whatever the configured hasher produced; with the default
// plain hasher that is the password itself.
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
