package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/engine"
	"github.com/clirdec/presence/internal/models"
)

type DeviceController struct {
	DB    *gorm.DB
	Coord *engine.Coordinator
}

type assignClassroomRequest struct {
	ClassroomID uint `json:"classroom_id" binding:"required"`
}

func deviceResponse(d models.Device) gin.H {
	return gin.H{
		"id":                d.ID,
		"device_id":         d.DeviceID,
		"device_type":       d.DeviceType,
		"ip_address":        d.IPAddress,
		"mac_address":       d.MACAddress,
		"capabilities":      d.CapabilityList(),
		"current_mode":      d.CurrentMode,
		"classroom_id":      d.ClassroomID,
		"state":             d.State,
		"last_heartbeat":    d.LastHeartbeat,
		"presence_detected": d.PresenceDetected,
		"active":            d.Active,
		"created_at":        d.CreatedAt,
	}
}

func (dc *DeviceController) List(c *gin.Context) {
	limit, page := pageParams(c)

	base := dc.DB.Model(&models.Device{})
	if state := strings.TrimSpace(strings.ToLower(c.Query("state"))); state != "" {
		switch state {
		case models.DeviceDisconnected, models.DeviceConnected, models.DeviceRegistered:
			base = base.Where("state = ?", state)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state value"})
			return
		}
	}
	if v := c.Query("classroom_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom_id"})
			return
		}
		base = base.Where("classroom_id = ?", id)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var devices []models.Device
	if err := base.Order("device_id ASC").Limit(limit).Offset((page - 1) * limit).Find(&devices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": total, "page": page, "limit": limit})
}

func (dc *DeviceController) Get(c *gin.Context) {
	var device models.Device
	if err := dc.DB.Where("device_id = ?", c.Param("deviceId")).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, deviceResponse(device))
}

// AssignClassroom binds a registered device to a room. The binding goes
// through the engine so the in-flight scan path sees it immediately.
func (dc *DeviceController) AssignClassroom(c *gin.Context) {
	var req assignClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deviceID := c.Param("deviceId")
	if err := dc.Coord.AssignClassroom(c.Request.Context(), deviceID, req.ClassroomID); err != nil {
		if engine.IsKind(err, engine.KindDeviceNotRegistered) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	device, err := dc.Coord.LookupDevice(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, deviceResponse(*device))
}

func (dc *DeviceController) Deactivate(c *gin.Context) {
	var device models.Device
	if err := dc.DB.Where("device_id = ?", c.Param("deviceId")).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	device.Active = false
	device.State = models.DeviceDisconnected
	if err := dc.DB.Save(&device).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, deviceResponse(device))
}
