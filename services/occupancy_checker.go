package services

import (
	"dorm-backend/models"
)

// CheckPlacement decides whether user may move into room. room.Current must
// hold the live occupant count read inside the caller's transaction.
func CheckPlacement(user models.User, room models.Room) error {
	if user.IsBanned() {
		return ErrUserBanned
	}
	if user.ResidentOf(room.ID) {
		return ErrAlreadyInRoom
	}
	if user.Gender != room.Gender {
		return ErrGenderMismatch
	}
	if room.IsFull() {
		return ErrCapacityExceeded
	}
	return nil
}

// CheckRoster validates a full replacement occupant list for a room with the
// given gender and capacity. One failing user rejects the whole list.
func CheckRoster(gender string, max int, users []models.User) error {
	if len(users) > max {
		return ErrCapacityExceeded
	}
	for _, u := range users {
		if u.IsBanned() {
			return ErrUserBanned
		}
		if u.Gender != gender {
			return ErrGenderMismatch
		}
	}
	return nil
}

// CrossRoomTransfers returns the users resident in a room other than roomID.
func CrossRoomTransfers(roomID string, users []models.User) []Transfer {
	var out []Transfer
	for _, u := range users {
		if u.CurrentRoomID != nil && *u.CurrentRoomID != roomID {
			out = append(out, Transfer{UserID: u.ID, FromRoomID: *u.CurrentRoomID})
		}
	}
	return out
}
