package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dorm-backend/events"
	"dorm-backend/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var validate = validator.New()

// OccupancyService runs every operation that changes who lives where.
// Each operation is one transaction; the room counters are always
// re-derived from the users table before commit.
type OccupancyService struct {
	DB        *gorm.DB
	Publisher events.Publisher
	// Now stamps reviews and contract start dates.
	Now       func() time.Time
}

func NewOccupancyService(db *gorm.DB, pub events.Publisher) *OccupancyService {
	if pub == nil {
		pub = events.LogPublisher{}
	}
	return &OccupancyService{DB: db, Publisher: pub, Now: time.Now}
}

type AssignRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	RoomID string `json:"roomId" validate:"required,max=50"`
}

// RosterUpdate replaces a room's attributes and its full occupant and
// facility lists. NewID renames the room when set.
type RosterUpdate struct {
	RoomID      string  `json:"roomId" validate:"required,max=50"`
	NewID       string  `json:"id" validate:"omitempty,max=50"`
	Gender      string  `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Price       float64 `json:"price" validate:"gte=0"`
	Max         int     `json:"max" validate:"gte=1"`
	UserIDs     []uint  `json:"userIds"`
	FacilityIDs []uint  `json:"facilityIds"`
}

type ChangeRequestInput struct {
	UserID   uint   `json:"userId" validate:"required"`
	ToRoomID string `json:"toRoomId" validate:"required,max=50"`
}

// AssignUserToRoom places one user directly into a room. A user already
// living elsewhere is moved and both rooms are recounted.
func (s *OccupancyService) AssignUserToRoom(ctx context.Context, actor Principal, in AssignRequest) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return invalidInput(err)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, in.UserID)
		if err != nil {
			return err
		}
		origin := ""
		if user.CurrentRoomID != nil {
			origin = *user.CurrentRoomID
		}
		rooms, err := lockRooms(tx, in.RoomID, origin)
		if err != nil {
			return err
		}
		room, ok := rooms[in.RoomID]
		if !ok {
			return notFound("room", in.RoomID)
		}
		if room.Current, err = liveCount(tx, room.ID); err != nil {
			return err
		}
		if err := CheckPlacement(user, room); err != nil {
			return err
		}

		if err := placeUser(tx, user.ID, &room.ID); err != nil {
			return err
		}
		if _, ok := rooms[origin]; ok {
			if _, err := syncRoomCounters(tx, origin); err != nil {
				return err
			}
		}
		_, err = syncRoomCounters(tx, room.ID)
		return err
	})
	if err != nil {
		log.Printf("assign user %d to room %s failed: %v", in.UserID, in.RoomID, err)
		return classify(err)
	}

	ev := events.New(events.UserAssigned)
	ev.UserID, ev.RoomID, ev.ActorID = in.UserID, in.RoomID, actor.UserID
	s.publish(ctx, ev)
	return nil
}

// ReplaceRoomRoster applies an admin edit of a room: attributes, optional
// rename, occupant list and facility list. Either all of it commits or
// none of it does.
func (s *OccupancyService) ReplaceRoomRoster(ctx context.Context, actor Principal, in RosterUpdate) (models.Room, error) {
	var result models.Room
	if err := requireAdmin(actor); err != nil {
		return result, err
	}
	if err := validate.Struct(in); err != nil {
		return result, invalidInput(err)
	}
	userIDs := uniqueIDs(in.UserIDs)
	facilityIDs := uniqueIDs(in.FacilityIDs)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occupants, err := occupantIDs(tx, in.RoomID)
		if err != nil {
			return err
		}
		locked, err := lockUsers(tx, uniqueIDs(append(occupants, userIDs...)))
		if err != nil {
			return err
		}
		room, err := lockRoom(tx, in.RoomID)
		if err != nil {
			return err
		}
		targetID := room.ID
		if in.NewID != "" && in.NewID != room.ID {
			targetID = in.NewID
		}

		listed := make(map[uint]struct{}, len(userIDs))
		for _, id := range userIDs {
			listed[id] = struct{}{}
		}
		var users []models.User
		found := make([]uint, 0, len(userIDs))
		for _, u := range locked {
			if _, ok := listed[u.ID]; ok {
				users = append(users, u)
				found = append(found, u.ID)
			}
		}
		if missing := missingIDs(userIDs, found); len(missing) > 0 {
			return notFound("users", missing)
		}
		if err := CheckRoster(in.Gender, in.Max, users); err != nil {
			return err
		}
		if transfers := CrossRoomTransfers(room.ID, users); len(transfers) > 0 {
			return &TransferConflictError{RoomID: room.ID, Transfers: transfers}
		}

		if len(facilityIDs) > 0 {
			var found []uint
			if err := tx.Model(&models.Facility{}).Where("id IN ?", facilityIDs).Pluck("id", &found).Error; err != nil {
				return err
			}
			if missing := missingIDs(facilityIDs, found); len(missing) > 0 {
				return notFound("facilities", missing)
			}
		}

		if targetID != room.ID {
			if err := renameRoom(tx, room.ID, targetID); err != nil {
				return err
			}
		}

		leaving := tx.Model(&models.User{}).Where("current_room_id = ?", targetID)
		if len(userIDs) > 0 {
			leaving = leaving.Where("id NOT IN ?", userIDs)
		}
		if err := leaving.Updates(map[string]interface{}{
			"current_room_id": nil,
			"status":          models.UserNotStaying,
		}).Error; err != nil {
			return err
		}
		if len(userIDs) > 0 {
			if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Updates(map[string]interface{}{
				"current_room_id": targetID,
				"status":          models.UserStaying,
			}).Error; err != nil {
				return err
			}
		}

		detached := tx.Model(&models.Facility{}).Where("current_room_id = ?", targetID)
		if len(facilityIDs) > 0 {
			detached = detached.Where("id NOT IN ?", facilityIDs)
		}
		if err := detached.Update("current_room_id", nil).Error; err != nil {
			return err
		}
		if len(facilityIDs) > 0 {
			if err := tx.Model(&models.Facility{}).Where("id IN ?", facilityIDs).Update("current_room_id", targetID).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Room{}).Where("id = ?", targetID).Updates(map[string]interface{}{
			"gender": in.Gender,
			"price":  in.Price,
			"max":    in.Max,
		}).Error; err != nil {
			return err
		}
		result, err = syncRoomCounters(tx, targetID)
		return err
	})
	if err != nil {
		log.Printf("replace roster of room %s failed: %v", in.RoomID, err)
		return models.Room{}, classify(err)
	}

	ev := events.New(events.RoomRosterReplaced)
	ev.RoomID, ev.ActorID = result.ID, actor.UserID
	s.publish(ctx, ev)
	return result, nil
}

// CreateChangeRequest records a student's request to move. The user row
// is locked while the pending count is read so two concurrent submissions
// cannot both pass the one-pending-request rule.
func (s *OccupancyService) CreateChangeRequest(ctx context.Context, actor Principal, in ChangeRequestInput) (models.RoomChangeRequest, error) {
	var req models.RoomChangeRequest
	if err := validate.Struct(in); err != nil {
		return req, invalidInput(err)
	}
	if !actor.Owns(in.UserID) {
		return req, ErrForbidden
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, in.UserID)
		if err != nil {
			return err
		}
		var room models.Room
		if err := tx.Where("id = ?", in.ToRoomID).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("room", in.ToRoomID)
			}
			return err
		}
		if room.Current, err = liveCount(tx, room.ID); err != nil {
			return err
		}
		var pending int64
		if err := tx.Model(&models.RoomChangeRequest{}).
			Where("user_id = ? AND status = ?", user.ID, models.RequestPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if err := checkNewRequest(user, room, pending); err != nil {
			return err
		}

		req = models.RoomChangeRequest{
			UserID:     user.ID,
			FromRoomID: user.CurrentRoomID,
			ToRoomID:   room.ID,
			Status:     models.RequestPending,
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		log.Printf("create room change request for user %d failed: %v", in.UserID, err)
		return models.RoomChangeRequest{}, classify(err)
	}

	ev := events.New(events.RequestCreated)
	ev.UserID, ev.RoomID, ev.RequestID, ev.ActorID = req.UserID, req.ToRoomID, req.ID, actor.UserID
	s.publish(ctx, ev)
	return req, nil
}

// ApproveChangeRequest moves the requesting user into the target room,
// opens a one-month contract with its first invoice and marks the request
// APPROVED. Eligibility is re-checked against live counts.
func (s *OccupancyService) ApproveChangeRequest(ctx context.Context, actor Principal, requestID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var req models.RoomChangeRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// user_id and to_room_id never change, so the unlocked read only
		// tells us which rows to lock first.
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("request", requestID)
			}
			return err
		}
		if !req.IsPending() {
			return ErrRequestNotPending
		}
		user, err := lockUser(tx, req.UserID)
		if err != nil {
			return err
		}
		origin := ""
		if user.CurrentRoomID != nil {
			origin = *user.CurrentRoomID
		}
		rooms, err := lockRooms(tx, req.ToRoomID, origin)
		if err != nil {
			return err
		}
		if req, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		if !req.IsPending() {
			return ErrRequestNotPending
		}
		room, ok := rooms[req.ToRoomID]
		if !ok {
			return notFound("room", req.ToRoomID)
		}
		if room.Current, err = liveCount(tx, room.ID); err != nil {
			return err
		}
		if err := CheckPlacement(user, room); err != nil {
			return err
		}

		now := s.Now()
		if err := approveRequest(&req, actor.UserID, now); err != nil {
			return err
		}

		if err := placeUser(tx, user.ID, &room.ID); err != nil {
			return err
		}
		if _, ok := rooms[origin]; ok {
			if _, err := syncRoomCounters(tx, origin); err != nil {
				return err
			}
		}
		if _, err := syncRoomCounters(tx, room.ID); err != nil {
			return err
		}

		contract := models.Contract{
			UserID:    user.ID,
			RoomID:    room.ID,
			StartDate: datatypes.Date(now),
			EndDate:   datatypes.Date(now.AddDate(0, 1, 0)),
		}
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}
		invoice := models.Invoice{ContractID: contract.ID, AmountDue: room.Price}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		if err := refreshBalance(tx, user.ID); err != nil {
			return err
		}

		return saveReview(tx, req)
	})
	if err != nil {
		log.Printf("approve request %d failed: %v", requestID, err)
		return classify(err)
	}

	ev := events.New(events.RequestApproved)
	ev.UserID, ev.RoomID, ev.RequestID, ev.ActorID = req.UserID, req.ToRoomID, req.ID, actor.UserID
	s.publish(ctx, ev)
	return nil
}

// RejectChangeRequest closes a PENDING request without moving anyone.
func (s *OccupancyService) RejectChangeRequest(ctx context.Context, actor Principal, requestID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var req models.RoomChangeRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if req, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		if err := rejectRequest(&req, actor.UserID, s.Now()); err != nil {
			return err
		}
		return saveReview(tx, req)
	})
	if err != nil {
		log.Printf("reject request %d failed: %v", requestID, err)
		return classify(err)
	}

	ev := events.New(events.RequestRejected)
	ev.UserID, ev.RoomID, ev.RequestID, ev.ActorID = req.UserID, req.ToRoomID, req.ID, actor.UserID
	s.publish(ctx, ev)
	return nil
}

// DeleteChangeRequest lets a student withdraw their own PENDING request.
func (s *OccupancyService) DeleteChangeRequest(ctx context.Context, actor Principal, requestID uint) error {
	var req models.RoomChangeRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if req, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		if err := checkDeletable(req, actor); err != nil {
			return err
		}
		return tx.Delete(&models.RoomChangeRequest{}, req.ID).Error
	})
	if err != nil {
		log.Printf("delete request %d failed: %v", requestID, err)
		return classify(err)
	}

	ev := events.New(events.RequestDeleted)
	ev.UserID, ev.RoomID, ev.RequestID, ev.ActorID = req.UserID, req.ToRoomID, req.ID, actor.UserID
	s.publish(ctx, ev)
	return nil
}

// BanUser evicts the user, removes their contracts and invoices, rejects
// their pending requests and marks them BANNED, all in one transaction.
func (s *OccupancyService) BanUser(ctx context.Context, actor Principal, userID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var origin string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if user.IsBanned() {
			return ErrAlreadyBanned
		}
		if user.CurrentRoomID != nil {
			origin = *user.CurrentRoomID
			if _, err := lockRooms(tx, origin); err != nil {
				return err
			}
		}

		var contractIDs []uint
		if err := tx.Model(&models.Contract{}).Where("user_id = ?", userID).Pluck("id", &contractIDs).Error; err != nil {
			return err
		}
		if len(contractIDs) > 0 {
			if err := tx.Where("contract_id IN ?", contractIDs).Delete(&models.Invoice{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", contractIDs).Delete(&models.Contract{}).Error; err != nil {
				return err
			}
		}

		if err := rejectPending(tx, actor.UserID, s.Now(), "user_id = ?", userID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"status":          models.UserBanned,
			"current_room_id": nil,
		}).Error; err != nil {
			return err
		}
		if err := refreshBalance(tx, userID); err != nil {
			return err
		}
		if origin != "" {
			if _, err := syncRoomCounters(tx, origin); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ban user %d failed: %v", userID, err)
		return classify(err)
	}

	ev := events.New(events.UserBanned)
	ev.UserID, ev.RoomID, ev.ActorID = userID, origin, actor.UserID
	s.publish(ctx, ev)
	return nil
}

// DeleteRoom detaches occupants and facilities, rejects pending requests
// that target the room and removes it. Contracts keep the room id as
// history.
func (s *OccupancyService) DeleteRoom(ctx context.Context, actor Principal, roomID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occupants, err := occupantIDs(tx, roomID)
		if err != nil {
			return err
		}
		if _, err := lockUsers(tx, occupants); err != nil {
			return err
		}
		if _, err := lockRoom(tx, roomID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("current_room_id = ?", roomID).Updates(map[string]interface{}{
			"current_room_id": nil,
			"status":          models.UserNotStaying,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Facility{}).Where("current_room_id = ?", roomID).Update("current_room_id", nil).Error; err != nil {
			return err
		}
		if err := rejectPending(tx, actor.UserID, s.Now(), "to_room_id = ?", roomID); err != nil {
			return err
		}
		return tx.Where("id = ?", roomID).Delete(&models.Room{}).Error
	})
	if err != nil {
		log.Printf("delete room %s failed: %v", roomID, err)
		return classify(err)
	}

	ev := events.New(events.RoomDeleted)
	ev.RoomID, ev.ActorID = roomID, actor.UserID
	s.publish(ctx, ev)
	return nil
}

func saveReview(tx *gorm.DB, req models.RoomChangeRequest) error {
	return tx.Model(&models.RoomChangeRequest{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
		"status":      req.Status,
		"reviewed_by": req.ReviewedBy,
		"reviewed_at": req.ReviewedAt,
	}).Error
}

func rejectPending(tx *gorm.DB, reviewer uint, at time.Time, cond string, arg interface{}) error {
	return tx.Model(&models.RoomChangeRequest{}).
		Where(cond, arg).
		Where("status = ?", models.RequestPending).
		Updates(map[string]interface{}{
			"status":      models.RequestRejected,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		}).Error
}

// publish is best effort: the state change is already committed.
func (s *OccupancyService) publish(ctx context.Context, ev events.Event) {
	if s.Publisher == nil {
		return
	}
	key := ev.RoomID
	if ev.UserID != 0 {
		key = fmt.Sprintf("user-%d", ev.UserID)
	}
	if err := s.Publisher.Publish(ctx, key, ev); err != nil {
		log.Printf("warning: failed to publish %s event: %v", ev.Type, err)
	}
}
