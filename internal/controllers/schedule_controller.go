package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

type ScheduleController struct {
	DB *gorm.DB
}

type createScheduleRequest struct {
	SubjectID    uint   `json:"subject_id" binding:"required"`
	ClassroomID  uint   `json:"classroom_id" binding:"required"`
	DayOfWeek    *int   `json:"day_of_week" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	Section      string `json:"section"`
	Semester     string `json:"semester"`
	AcademicYear string `json:"academic_year"`
	Active       *bool  `json:"active"`
}

type updateScheduleRequest struct {
	SubjectID    *uint   `json:"subject_id"`
	ClassroomID  *uint   `json:"classroom_id"`
	DayOfWeek    *int    `json:"day_of_week"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Section      *string `json:"section"`
	Semester     *string `json:"semester"`
	AcademicYear *string `json:"academic_year"`
	Active       *bool   `json:"active"`
}

func validateSlot(day int, start, end string) string {
	if day < 0 || day > 6 {
		return "day_of_week must be 0 (Monday) through 6 (Sunday)"
	}
	if !models.ValidTimeOfDay(start) || !models.ValidTimeOfDay(end) {
		return "start_time and end_time must be HH:MM"
	}
	s := models.Schedule{StartTime: start, EndTime: end}
	startMin, _ := s.StartMinutes()
	endMin, _ := s.EndMinutes()
	if endMin <= startMin {
		return "end_time must be after start_time"
	}
	return ""
}

func (sc *ScheduleController) List(c *gin.Context) {
	limit, page := pageParams(c)

	base := sc.DB.Model(&models.Schedule{})
	if v := c.Query("classroom_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom_id"})
			return
		}
		base = base.Where("classroom_id = ?", id)
	}
	if v := c.Query("subject_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject_id"})
			return
		}
		base = base.Where("subject_id = ?", id)
	}
	if v := c.Query("day_of_week"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil || day < 0 || day > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day_of_week"})
			return
		}
		base = base.Where("day_of_week = ?", day)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var schedules []models.Schedule
	if err := base.Order("day_of_week ASC, start_time ASC").Limit(limit).Offset((page - 1) * limit).Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules, "total": total, "page": page, "limit": limit})
}

func (sc *ScheduleController) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateSlot(*req.DayOfWeek, req.StartTime, req.EndTime); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var subject models.Subject
	if err := sc.DB.First(&subject, req.SubjectID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject not found"})
		return
	}
	var room models.Classroom
	if err := sc.DB.First(&room, req.ClassroomID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "classroom not found"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	schedule := models.Schedule{
		SubjectID:    req.SubjectID,
		ClassroomID:  req.ClassroomID,
		DayOfWeek:    *req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Section:      req.Section,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Active:       active,
	}
	if err := sc.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (sc *ScheduleController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var schedule models.Schedule
	if err := sc.DB.First(&schedule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (sc *ScheduleController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var schedule models.Schedule
	if err := sc.DB.First(&schedule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SubjectID != nil {
		schedule.SubjectID = *req.SubjectID
	}
	if req.ClassroomID != nil {
		schedule.ClassroomID = *req.ClassroomID
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.Section != nil {
		schedule.Section = *req.Section
	}
	if req.Semester != nil {
		schedule.Semester = *req.Semester
	}
	if req.AcademicYear != nil {
		schedule.AcademicYear = *req.AcademicYear
	}
	if req.Active != nil {
		schedule.Active = *req.Active
	}

	if msg := validateSlot(schedule.DayOfWeek, schedule.StartTime, schedule.EndTime); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := sc.DB.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (sc *ScheduleController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := sc.DB.Delete(&models.Schedule{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule deleted"})
}
