package models

import "github.com/google/uuid"

type PrincipalKind string

const (
	PrincipalRegistered PrincipalKind = "registered"
	PrincipalGuest      PrincipalKind = "guest"
)

// Principal is the authenticated actor a request runs on behalf of. The single
// ID field is interpreted by Kind, so a principal can never reference both a
// user and a guest session at once.
type Principal struct {
	Kind PrincipalKind
	ID   uuid.UUID
}

func RegisteredPrincipal(userID uuid.UUID) Principal {
	return Principal{Kind: PrincipalRegistered, ID: userID}
}

func GuestPrincipal(sessionID uuid.UUID) Principal {
	return Principal{Kind: PrincipalGuest, ID: sessionID}
}

func (p Principal) IsGuest() bool {
	return p.Kind == PrincipalGuest
}

func (p Principal) IsZero() bool {
	return p.ID == uuid.Nil
}
