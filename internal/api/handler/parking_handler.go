package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/service"
)

type ParkingHandler struct {
	parkingService *service.ParkingService
}

func NewParkingHandler(ps *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: ps}
}

// GET /
func (h *ParkingHandler) Overview(c *gin.Context) {
	vehicles, err := h.parkingService.ListVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load overview"})
		return
	}
	parked, err := h.parkingService.CurrentlyParked(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load overview"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "parked": parked})
}

// GET /api/v1/parking-slots/available?type=Car
func (h *ParkingHandler) ListAvailableSlots(c *gin.Context) {
	slots, err := h.parkingService.ListAvailableSlots(c.Request.Context(), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list available slots"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// POST /api/v1/parking-records
func (h *ParkingHandler) ParkVehicle(c *gin.Context) {
	var dto domain.ParkVehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	record, err := h.parkingService.ParkVehicle(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrSlotUnavailable),
			errors.Is(err, repository.ErrVehicleAlreadyParked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not park vehicle"})
		}
		return
	}
	c.JSON(http.StatusCreated, record)
}

// POST /api/v1/parking-records/:id/exit
func (h *ParkingHandler) ExitVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parking record id"})
		return
	}

	record, err := h.parkingService.ExitVehicle(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not exit vehicle"})
		}
		return
	}
	c.JSON(http.StatusOK, record)
}

// GET /api/v1/parking-records/parked
func (h *ParkingHandler) CurrentlyParked(c *gin.Context) {
	parked, err := h.parkingService.CurrentlyParked(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list parked vehicles"})
		return
	}
	c.JSON(http.StatusOK, parked)
}

// GET /api/v1/revenue
func (h *ParkingHandler) Revenue(c *gin.Context) {
	report, err := h.parkingService.Revenue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build revenue report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
