package domain

// Session is the persisted client credential set. The three fields are
// written and cleared together.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != "" && s.User != nil
}
