package internal

// Session is the authenticated state of the client. It is a value: every
// transition builds a new Session rather than mutating one in place.
type Session struct {
	User  *UserInfo
	Token string
}

// LoggedIn reports whether a user record is present
func (s Session) LoggedIn() bool {
	return s.User != nil
}

// HasToken reports whether a bearer token is held
func (s Session) HasToken() bool {
	return s.Token != ""
}

// WithToken returns a copy of s carrying token
func (s Session) WithToken(token string) Session {
	return Session{User: s.User, Token: token}
}

// WithUser returns a copy of s carrying a copy of user
func (s Session) WithUser(user *UserInfo) Session {
	if user == nil {
		return Session{Token: s.Token}
	}
	u := *user
	return Session{User: &u, Token: s.Token}
}

// IsGuest reports whether the session belongs to the shared guest account
func (s Session) IsGuest(guestEmail string) bool {
	return s.User != nil && guestEmail != "" && s.User.Email == guestEmail
}
