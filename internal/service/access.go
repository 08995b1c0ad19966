package service

import "evolt/internal/models"

// Actor identifies the user behind a request for policy decisions.
type Actor struct {
	ID   int64
	Role models.Role
}

// CanModify decides whether the actor may mutate the station: admins always,
// everyone else only on stations they created.
func CanModify(actor Actor, station *models.Station) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.ID != 0 && actor.ID == station.CreatedBy
}
