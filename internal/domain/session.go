package domain

// Session marks the store's user as authenticated. Token is opaque and only
// checked for presence.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Valid reports whether the session has the expected shape.
func (s Session) Valid() bool {
	return s.Email != "" && s.Token != ""
}
