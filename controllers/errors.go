package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type errorKind struct {
	err     error
	status  int
	code    string
	message string
}

// Checked in order, so the wrapped InvalidTransition variants come before
// ErrInvalidTransition itself.
var errorKinds = []errorKind{
	{services.ErrInvalidInput, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "error.invalidCredentials", "Invalid email or password"},
	{services.ErrForbidden, http.StatusForbidden, "error.forbidden", "Not allowed"},
	{services.ErrNotFound, http.StatusNotFound, "error.notFound", "Resource not found"},
	{services.ErrDuplicateID, http.StatusConflict, "error.duplicateId", "Room id already exists"},
	{services.ErrDuplicateEmail, http.StatusConflict, "error.duplicateEmail", "Email already registered"},
	{services.ErrPendingRequestExists, http.StatusConflict, "error.pendingRequestExists", "A pending request already exists"},
	{services.ErrRequestNotPending, http.StatusConflict, "error.requestNotPending", "Request is not pending"},
	{services.ErrAlreadyBanned, http.StatusConflict, "error.alreadyBanned", "User is already banned"},
	{services.ErrInvalidTransition, http.StatusConflict, "error.invalidTransition", "Invalid status transition"},
	{services.ErrCapacityExceeded, http.StatusUnprocessableEntity, "error.capacityExceeded", "Room is full"},
	{services.ErrGenderMismatch, http.StatusUnprocessableEntity, "error.genderMismatch", "Room gender does not match"},
	{services.ErrAlreadyInRoom, http.StatusUnprocessableEntity, "error.alreadyInRoom", "User already lives in this room"},
	{services.ErrUserBanned, http.StatusUnprocessableEntity, "error.userBanned", "User is banned"},
}

// respondError maps a service error to the HTTP error body.
func respondError(c *gin.Context, err error) {
	var conflict *services.TransferConflictError
	if errors.As(err, &conflict) {
		utils.JSONError(c, http.StatusConflict, "error.transferConflict", "Users already live in another room", gin.H{
			"conflicts": conflict.Transfers,
		})
		return
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			var extra gin.H
			if k.err == services.ErrInvalidInput {
				extra = gin.H{"details": err.Error()}
			}
			utils.JSONError(c, k.status, k.code, k.message, extra)
			return
		}
	}
	log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Database error", nil)
}

func badPayload(c *gin.Context, err error) {
	log.Printf("❌ JSON BINDING ERROR (400): %v", err)
	utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload", gin.H{
		"details": err.Error(),
	})
}

// uintParam reads a positive numeric path parameter, writing a 400 when it
// is malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid "+name, nil)
		return 0, false
	}
	return uint(n), true
}
