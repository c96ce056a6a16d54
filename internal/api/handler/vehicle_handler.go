package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v4"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/api/middleware"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/service"
)

type VehicleHandler struct {
	parkingService *service.ParkingService
}

func NewVehicleHandler(ps *service.ParkingService) *VehicleHandler {
	return &VehicleHandler{parkingService: ps}
}

// POST /api/v1/vehicles
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var dto domain.RegisterVehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	userID := callerID(c)
	vehicle, err := h.parkingService.RegisterVehicle(c.Request.Context(), dto, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register vehicle"})
		}
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GET /api/v1/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.parkingService.ListVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// callerID reads the authenticated user id placed in the context by the auth
// middleware; absent on public routes.
func callerID(c *gin.Context) null.Int {
	val, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return null.Int{}
	}
	idStr, ok := val.(string)
	if !ok {
		return null.Int{}
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(int64(id))
}
