package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"roombook-backend/services"
	"roombook-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type BookRoomPayload struct {
	StudentName string      `json:"studentName"`
	Purpose     string      `json:"purpose"`
	Duration    json.Number `json:"duration"`
}

type ExtendBookingPayload struct {
	BookingCode  string      `json:"bookingCode"`
	ExtraMinutes json.Number `json:"extraMinutes"`
}

type ReleaseBookingPayload struct {
	BookingCode string `json:"bookingCode"`
}

// ---------------------------
// Controller
// ---------------------------

type RoomController struct {
	BookingSvc *services.BookingService
	Log        *zap.Logger
}

func NewRoomController(svc *services.BookingService, log *zap.Logger) *RoomController {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomController{BookingSvc: svc, Log: log}
}

// GET /api/rooms
func (ctrl *RoomController) ListRooms(c *gin.Context) {
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.ListRooms(c.Request.Context()))
}

// GET /api/rooms/:id
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := ctrl.BookingSvc.GetRoom(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms/:id/book
func (ctrl *RoomController) BookRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var payload BookRoomPayload
	if !bindPayload(c, &payload) {
		return
	}
	minutes, err := services.ParseMinutes("Duration", payload.Duration.String())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	res, err := ctrl.BookingSvc.Book(c.Request.Context(), services.BookRequest{
		RoomID:          id,
		StudentName:     payload.StudentName,
		Purpose:         payload.Purpose,
		DurationMinutes: minutes,
	})
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

// POST /api/rooms/:id/extend
func (ctrl *RoomController) ExtendBooking(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var payload ExtendBookingPayload
	if !bindPayload(c, &payload) {
		return
	}
	minutes, err := services.ParseMinutes("Extra minutes", payload.ExtraMinutes.String())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	res, err := ctrl.BookingSvc.Extend(c.Request.Context(), services.ExtendRequest{
		RoomID:       id,
		BookingCode:  payload.BookingCode,
		ExtraMinutes: minutes,
	})
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/rooms/:id/release
func (ctrl *RoomController) ReleaseBooking(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var payload ReleaseBookingPayload
	if !bindPayload(c, &payload) {
		return
	}

	res, err := ctrl.BookingSvc.Release(c.Request.Context(), services.ReleaseRequest{
		RoomID:      id,
		BookingCode: payload.BookingCode,
	})
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// ---------------------------
// Helpers
// ---------------------------

// an id that is not a number cannot name an existing room
func roomIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "Room not found")
		return 0, false
	}
	return id, true
}

func bindPayload(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload")
		return false
	}
	return true
}

func (ctrl *RoomController) respondError(c *gin.Context, err error) {
	msg := services.Message(err)
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", msg)
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", msg)
	case errors.Is(err, services.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "error.roomStateConflict", msg)
	case errors.Is(err, services.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "error.invalidBookingCode", msg)
	default:
		ctrl.Log.Error("booking request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Could not save booking, please try again")
	}
}
