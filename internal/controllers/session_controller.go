package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

type SessionController struct {
	DB *gorm.DB
}

type createSessionRequest struct {
	ScheduleID uint   `json:"schedule_id" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Notes      string `json:"notes"`
}

func (sc *SessionController) List(c *gin.Context) {
	limit, page := pageParams(c)

	base := sc.DB.Model(&models.ClassSession{})
	if v := c.Query("schedule_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule_id"})
			return
		}
		base = base.Where("schedule_id = ?", id)
	}
	if v := c.Query("date"); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		base = base.Where("date = ?", v)
	}
	if v := c.Query("status"); v != "" {
		base = base.Where("status = ?", v)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var sessions []models.ClassSession
	if err := base.Order("date DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions, "total": total, "page": page, "limit": limit})
}

func (sc *SessionController) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var schedule models.Schedule
	if err := sc.DB.First(&schedule, req.ScheduleID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schedule not found"})
		return
	}
	if models.Weekday(date) != schedule.DayOfWeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date does not fall on the schedule's weekday"})
		return
	}

	session := models.ClassSession{
		ScheduleID: req.ScheduleID,
		Date:       date,
		Status:     models.SessionScheduled,
		Notes:      req.Notes,
	}
	if err := sc.DB.Create(&session).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "session already exists for that schedule and date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (sc *SessionController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var session models.ClassSession
	if err := sc.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// End marks an active or scheduled session completed. Attendance for the
// session freezes as-is; students who never tapped stay absent.
func (sc *SessionController) End(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var session models.ClassSession
	if err := sc.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session.Status == models.SessionCompleted || session.Status == models.SessionCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "session is already closed"})
		return
	}

	now := time.Now()
	session.Status = models.SessionCompleted
	session.ActualEndTime = &now
	if err := sc.DB.Save(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}
