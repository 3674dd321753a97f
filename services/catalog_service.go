package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CatalogService covers the plain create/read operations around the
// occupancy core and the bulk imports.
type CatalogService struct {
	DB      *gorm.DB
	Reports *ttlcache.Cache[uuid.UUID, ImportReport]
}

func NewCatalogService(db *gorm.DB, reportTTL time.Duration) *CatalogService {
	reports := ttlcache.New(
		ttlcache.WithTTL[uuid.UUID, ImportReport](reportTTL),
		ttlcache.WithDisableTouchOnHit[uuid.UUID, ImportReport](),
	)
	return &CatalogService{DB: db, Reports: reports}
}

type NewRoomInput struct {
	ID     string  `json:"id" validate:"required,max=50"`
	Gender string  `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Price  float64 `json:"price" validate:"gte=0"`
	Max    int     `json:"max" validate:"gte=1"`
}

type NewUserInput struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Name     string `json:"name" validate:"required,max=255"`
	Gender   string `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Role     string `json:"role" validate:"omitempty,oneof=STUDENT ADMIN"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type NewFacilityInput struct {
	Name   string  `json:"name" validate:"required,max=255"`
	Number string  `json:"number" validate:"max=50"`
	Status string  `json:"status" validate:"max=32"`
	Price  float64 `json:"price" validate:"gte=0"`
}

type RowFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportReport summarizes a bulk creation. Rows are numbered from 1.
type ImportReport struct {
	ID        uuid.UUID    `json:"id"`
	Kind      string       `json:"kind"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failures  []RowFailure `json:"failures"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ----------------------------------------------------
// Rooms
// ----------------------------------------------------

func (s *CatalogService) CreateRoom(ctx context.Context, actor Principal, in NewRoomInput) (models.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Room{}, err
	}
	return s.createRoom(ctx, in)
}

func (s *CatalogService) createRoom(ctx context.Context, in NewRoomInput) (models.Room, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := validate.Struct(in); err != nil {
		return models.Room{}, invalidInput(err)
	}
	room := models.Room{
		ID:     in.ID,
		Gender: in.Gender,
		Price:  in.Price,
		Max:    in.Max,
		Status: models.StatusFor(0, in.Max),
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return models.Room{}, ErrDuplicateID
		}
		return models.Room{}, classify(err)
	}
	return room, nil
}

func (s *CatalogService) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("id").Find(&rooms).Error; err != nil {
		return nil, classify(err)
	}
	return rooms, nil
}

// GetRoom loads the room with its occupants and facilities.
func (s *CatalogService) GetRoom(ctx context.Context, id string) (models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Facilities").
		Where("id = ?", id).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return room, notFound("room", id)
	}
	return room, classify(err)
}

// ----------------------------------------------------
// Users
// ----------------------------------------------------

func (s *CatalogService) CreateUser(ctx context.Context, actor Principal, in NewUserInput) (models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return models.User{}, err
	}
	return s.createUser(ctx, in)
}

func (s *CatalogService) createUser(ctx context.Context, in NewUserInput) (models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if err := validate.Struct(in); err != nil {
		return models.User{}, invalidInput(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, invalidInput(err)
	}
	if err != nil {
		return models.User{}, classify(err)
	}
	user := models.User{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		Gender:       in.Gender,
		Role:         in.Role,
		Status:       models.UserNotStaying,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, classify(err)
	}
	return user, nil
}

// ListUsers returns every user, optionally filtered by status.
func (s *CatalogService) ListUsers(ctx context.Context, actor Principal, status string) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Order("id")
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// Authenticate checks an email/password pair. Banned users cannot log in.
func (s *CatalogService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrInvalidCredentials
		}
		return user, classify(err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if user.IsBanned() {
		return models.User{}, ErrUserBanned
	}
	return user, nil
}

// ----------------------------------------------------
// Facilities
// ----------------------------------------------------

func (s *CatalogService) CreateFacility(ctx context.Context, actor Principal, in NewFacilityInput) (models.Facility, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Facility{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.Facility{}, invalidInput(err)
	}
	f := models.Facility{Name: strings.TrimSpace(in.Name), Number: in.Number, Status: in.Status, Price: in.Price}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		return models.Facility{}, classify(err)
	}
	return f, nil
}

func (s *CatalogService) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	var out []models.Facility
	if err := s.DB.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ----------------------------------------------------
// Requests & contracts
// ----------------------------------------------------

// ListRequests returns all requests for admins and only the caller's own
// requests for students. status filters when non-empty.
func (s *CatalogService) ListRequests(ctx context.Context, actor Principal, status string) ([]models.RoomChangeRequest, error) {
	q := s.DB.WithContext(ctx).Order("id DESC")
	if actor.IsAdmin() {
		q = q.Preload("User")
	} else {
		if actor.UserID == 0 {
			return nil, ErrForbidden
		}
		q = q.Where("user_id = ?", actor.UserID)
	}
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	var out []models.RoomChangeRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *CatalogService) ListContracts(ctx context.Context, actor Principal, userID uint) ([]models.Contract, error) {
	if !actor.IsAdmin() && !actor.Owns(userID) {
		return nil, ErrForbidden
	}
	var out []models.Contract
	err := s.DB.WithContext(ctx).
		Preload("Invoices").
		Where("user_id = ?", userID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ----------------------------------------------------
// Bulk imports
// ----------------------------------------------------

// BulkCreateRooms inserts each row on its own; a failing row does not stop
// the rest.
func (s *CatalogService) BulkCreateRooms(ctx context.Context, actor Principal, rows []NewRoomInput) (ImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return ImportReport{}, err
	}
	report := newReport("rooms", len(rows))
	for i, row := range rows {
		if _, err := s.createRoom(ctx, row); err != nil {
			report.fail(i+1, err)
			continue
		}
		report.Succeeded++
	}
	s.store(report)
	return report, nil
}

func (s *CatalogService) BulkCreateUsers(ctx context.Context, actor Principal, rows []NewUserInput) (ImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return ImportReport{}, err
	}
	report := newReport("users", len(rows))
	for i, row := range rows {
		if _, err := s.createUser(ctx, row); err != nil {
			report.fail(i+1, err)
			continue
		}
		report.Succeeded++
	}
	s.store(report)
	return report, nil
}

func (s *CatalogService) GetImportReport(actor Principal, id uuid.UUID) (ImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return ImportReport{}, err
	}
	item := s.Reports.Get(id)
	if item == nil {
		return ImportReport{}, notFound("import report", id)
	}
	return item.Value(), nil
}

func (s *CatalogService) store(report ImportReport) {
	s.Reports.Set(report.ID, report, ttlcache.DefaultTTL)
	log.Printf("import %s (%s): %d/%d rows created", report.ID, report.Kind, report.Succeeded, report.Total)
}

func newReport(kind string, total int) ImportReport {
	return ImportReport{
		ID:        uuid.New(),
		Kind:      kind,
		Total:     total,
		Failures:  []RowFailure{},
		CreatedAt: time.Now().UTC(),
	}
}

func (r *ImportReport) fail(row int, err error) {
	r.Failures = append(r.Failures, RowFailure{Row: row, Error: err.Error()})
}
