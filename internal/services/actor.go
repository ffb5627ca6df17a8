package services

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
)

// Actor is the authenticated principal a call is made on behalf of.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func ActorOf(p *models.Principal) Actor {
	return Actor{ID: p.ID, Admin: p.Role == models.RoleAdmin}
}

// CanAccess reports whether a is owner or an admin.
func (a Actor) CanAccess(owner uuid.UUID) bool {
	return a.Admin || a.ID == owner
}
