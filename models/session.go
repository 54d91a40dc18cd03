package models

// SessionState is the on-disk browser storage snapshot. The JSON shape matches
// Playwright's storage state file so either side can read the other's output.
type SessionState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins,omitempty"`
}

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

type OriginState struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Valid reports whether the snapshot is worth replaying. Only emptiness is
// checked; expiry is discovered after the first navigation.
func (s *SessionState) Valid() bool {
	return s != nil && len(s.Cookies) > 0
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
