package model

// Identity is the authenticated request context produced by the
// authentication middleware. It lives only as long as the request that
// built it.
type Identity struct {
	UserID    uint64 // owner of the matched session row
	Role      Role   // current row role, falling back to the token's role claim
	SessionID uint64 // tokens.id of the matched session
	Token     string // raw cookie value, needed to address the row on logout
}
