package services

import (
	"time"

	"dorm-backend/models"
)

// Room-change requests move PENDING -> APPROVED | REJECTED, or are deleted
// while PENDING. APPROVED and REJECTED are terminal.

func approveRequest(req *models.RoomChangeRequest, reviewer uint, at time.Time) error {
	if !req.IsPending() {
		return ErrRequestNotPending
	}
	req.Status = models.RequestApproved
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &at
	return nil
}

func rejectRequest(req *models.RoomChangeRequest, reviewer uint, at time.Time) error {
	if !req.IsPending() {
		return ErrRequestNotPending
	}
	req.Status = models.RequestRejected
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &at
	return nil
}

func checkDeletable(req models.RoomChangeRequest, actor Principal) error {
	if !actor.Owns(req.UserID) {
		return ErrForbidden
	}
	if !req.IsPending() {
		return ErrRequestNotPending
	}
	return nil
}

// checkNewRequest validates a request before it is stored. pending is the
// number of PENDING requests the user already has.
func checkNewRequest(user models.User, toRoom models.Room, pending int64) error {
	if user.IsBanned() {
		return ErrUserBanned
	}
	if pending > 0 {
		return ErrPendingRequestExists
	}
	if user.ResidentOf(toRoom.ID) {
		return ErrAlreadyInRoom
	}
	// advisory only, approval re-checks against fresh counts
	if user.Gender != toRoom.Gender {
		return ErrGenderMismatch
	}
	if toRoom.IsFull() {
		return ErrCapacityExceeded
	}
	return nil
}
