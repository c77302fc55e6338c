package auth

import (
	"context"

	"github.com/dmitrijs2005/qaboard/internal/common"
)

// Identity is the authenticated requester, resolved once per request.
type Identity struct {
	UserID int64
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == common.RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// CanModify reports whether id may update or delete a resource authored by
// authorID. It is the only ownership rule in the server.
func CanModify(id Identity, authorID int64) bool {
	return id.UserID == authorID || id.IsAdmin()
}
