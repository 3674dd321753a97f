package services

import (
	"errors"
	"sort"

	"dorm-backend/models"
	"dorm-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Helpers used inside OccupancyService transactions. Every one of them
// takes the transaction handle, never the service's root *gorm.DB.
//
// Lock order is users (ascending id), then rooms (ascending id), then
// change requests.

var forUpdate = clause.Locking{Strength: "UPDATE"}

func lockUser(tx *gorm.DB, id uint) (models.User, error) {
	var user models.User
	if err := tx.Clauses(forUpdate).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, notFound("user", id)
		}
		return user, err
	}
	return user, nil
}

// lockUsers locks the given users in ascending id order. Missing users
// are absent from the result.
func lockUsers(tx *gorm.DB, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := tx.Clauses(forUpdate).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func occupantIDs(tx *gorm.DB, roomID string) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.User{}).Where("current_room_id = ?", roomID).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func lockRoom(tx *gorm.DB, id string) (models.Room, error) {
	var room models.Room
	if err := tx.Clauses(forUpdate).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, notFound("room", id)
		}
		return room, err
	}
	return room, nil
}

// lockRooms locks the given rooms in ascending id order so two moves in
// opposite directions queue instead of deadlocking. Missing rooms are
// simply absent from the result.
func lockRooms(tx *gorm.DB, ids ...string) (map[string]models.Room, error) {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)

	out := make(map[string]models.Room, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}
	var rooms []models.Room
	if err := tx.Clauses(forUpdate).Where("id IN ?", uniq).Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	for _, r := range rooms {
		out[r.ID] = r
	}
	return out, nil
}

func lockRequest(tx *gorm.DB, id uint) (models.RoomChangeRequest, error) {
	var req models.RoomChangeRequest
	if err := tx.Clauses(forUpdate).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return req, notFound("request", id)
		}
		return req, err
	}
	return req, nil
}

func liveCount(tx *gorm.DB, roomID string) (int, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("current_room_id = ?", roomID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// syncRoomCounters re-derives current and status from the users table.
func syncRoomCounters(tx *gorm.DB, roomID string) (models.Room, error) {
	var room models.Room
	if err := tx.Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, notFound("room", roomID)
		}
		return room, err
	}
	n, err := liveCount(tx, roomID)
	if err != nil {
		return room, err
	}
	room.Current = n
	room.Status = models.StatusFor(n, room.Max)
	err = tx.Model(&models.Room{}).Where("id = ?", roomID).Updates(map[string]interface{}{
		"current": room.Current,
		"status":  room.Status,
	}).Error
	return room, err
}

// placeUser sets the user's room; a nil roomID means moving out.
func placeUser(tx *gorm.DB, userID uint, roomID *string) error {
	status := models.UserNotStaying
	if roomID != nil {
		status = models.UserStaying
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"current_room_id": roomID,
		"status":          status,
	}).Error
}

type balanceTotals struct {
	Due  float64
	Paid float64
}

// refreshBalance recomputes the user's financial summary from the invoices
// of their contracts.
func refreshBalance(tx *gorm.DB, userID uint) error {
	var totals balanceTotals
	err := tx.Table("invoices").
		Select("COALESCE(SUM(invoices.amount_due), 0) AS due, COALESCE(SUM(invoices.amount_paid), 0) AS paid").
		Joins("JOIN contracts ON contracts.id = invoices.contract_id").
		Where("contracts.user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"amount_due":  totals.Due,
		"amount_paid": totals.Paid,
	}).Error
}

// renameRoom moves the room's primary key and every reference to it.
// Users and facilities are also covered by ON UPDATE CASCADE where the
// database enforces foreign keys; the explicit updates are then no-ops.
func renameRoom(tx *gorm.DB, oldID, newID string) error {
	var taken int64
	if err := tx.Model(&models.Room{}).Where("id = ?", newID).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrDuplicateID
	}
	if err := tx.Model(&models.Room{}).Where("id = ?", oldID).Update("id", newID).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicateID
		}
		return err
	}

	refs := []struct {
		model  interface{}
		column string
	}{
		{&models.User{}, "current_room_id"},
		{&models.Facility{}, "current_room_id"},
		{&models.RoomChangeRequest{}, "to_room_id"},
		{&models.RoomChangeRequest{}, "from_room_id"},
		{&models.Contract{}, "room_id"},
	}
	for _, ref := range refs {
		if err := tx.Model(ref.model).Where(ref.column+" = ?", oldID).Update(ref.column, newID).Error; err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// missingIDs returns the wanted ids not present in found.
func missingIDs(wanted []uint, found []uint) []uint {
	have := make(map[uint]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	var out []uint
	for _, id := range wanted {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
