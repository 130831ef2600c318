package internal

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

// Persisted keys
const (
	KeyUser  = "user"
	KeyToken = "backendToken"
)

// SessionStore persists the user record and bearer token between runs
type SessionStore struct {
	db   *sqlx.DB
	path string
}

// NewSessionStore creates a SessionStore over an open database; path is only used in errors
func NewSessionStore(db *sqlx.DB, path string) *SessionStore {
	return &SessionStore{db: db, path: path}
}

// Load reads the persisted session. Missing entries yield a zero Session.
func (s *SessionStore) Load() (Session, error) {
	var session Session

	rawUser, ok, err := GetValue(s.db, KeyUser)
	if err != nil {
		return Session{}, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	if ok {
		var user UserInfo
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return Session{}, &ParseError{Source: "store", Key: KeyUser, Err: err}
		}
		session.User = &user
	}

	token, ok, err := GetValue(s.db, KeyToken)
	if err != nil {
		return Session{}, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	if ok {
		session.Token = token
	}

	return session, nil
}

// SaveUser persists the user record
func (s *SessionStore) SaveUser(user *UserInfo) error {
	data, err := json.Marshal(user)
	if err != nil {
		return &ParseError{Source: "store", Key: KeyUser, Err: err}
	}
	if err := SetValue(s.db, KeyUser, string(data)); err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// SaveToken persists the bearer token
func (s *SessionStore) SaveToken(token string) error {
	if err := SetValue(s.db, KeyToken, token); err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// Clear removes both persisted entries
func (s *SessionStore) Clear() error {
	if err := DeleteValues(s.db, KeyUser, KeyToken); err != nil {
		return &StorageError{Path: s.path, Op: "delete", Err: err}
	}
	return nil
}

// Path returns the database location
func (s *SessionStore) Path() string {
	return s.path
}
