package domain

import "time"

// DefaultSessionID is used when a caller does not supply a session id.
// Each session exclusively owns one transaction store partition and one
// index collection; there is no cross-session sharing.
const DefaultSessionID = "default"

// Session scopes a transaction store partition and an index collection to
// one user session. Sessions carry no authentication: the id is an
// ownership key, nothing more.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// CollectionName returns the index collection owned by this session.
func (s *Session) CollectionName() string {
	return "transactions_" + s.ID
}
