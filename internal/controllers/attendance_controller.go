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

type AttendanceController struct {
	DB    *gorm.DB
	Coord *engine.Coordinator
}

type attendanceRow struct {
	ID           uint        `json:"id"`
	StudentID    uint        `json:"student_id"`
	StudentName  string      `json:"student_name"`
	Section      string      `json:"section"`
	Status       string      `json:"status"`
	CheckinTime  interface{} `json:"checkin_time"`
	CheckoutTime interface{} `json:"checkout_time"`
	IsLate       bool        `json:"is_late"`
	MinutesLate  int         `json:"minutes_late"`
}

// ListBySession returns the attendance sheet for one session. Students
// in the roster who never tapped appear as absent rows with a zero ID;
// absence is derived at read time, never stored ahead of a tap.
func (ac *AttendanceController) ListBySession(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var session models.ClassSession
	if err := ac.DB.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var records []models.AttendanceRecord
	if err := ac.DB.Where("class_session_id = ?", sessionID).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byStudent := make(map[uint]models.AttendanceRecord, len(records))
	studentIDs := make([]uint, 0, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
		studentIDs = append(studentIDs, r.StudentID)
	}

	// The roster comes from the schedule's section unless the caller
	// narrows it; students on the roster with no record appear absent.
	section := strings.TrimSpace(c.Query("section"))
	if section == "" {
		var schedule models.Schedule
		if err := ac.DB.First(&schedule, session.ScheduleID).Error; err == nil {
			section = schedule.Section
		}
	}

	var students []models.Student
	if section != "" {
		if err := ac.DB.Where("section = ? AND active = ?", section, true).Find(&students).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	} else if len(studentIDs) > 0 {
		if err := ac.DB.Where("id IN ?", studentIDs).Find(&students).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	rows := make([]attendanceRow, 0, len(students))
	seen := make(map[uint]bool, len(students))
	for _, s := range students {
		seen[s.ID] = true
		if r, ok := byStudent[s.ID]; ok {
			rows = append(rows, attendanceRow{
				ID:           r.ID,
				StudentID:    s.ID,
				StudentName:  s.Name,
				Section:      s.Section,
				Status:       r.Status,
				CheckinTime:  r.CheckinTime,
				CheckoutTime: r.CheckoutTime,
				IsLate:       r.IsLate,
				MinutesLate:  r.MinutesLate,
			})
			continue
		}
		rows = append(rows, attendanceRow{
			StudentID:   s.ID,
			StudentName: s.Name,
			Section:     s.Section,
			Status:      models.AttendanceAbsent,
		})
	}
	// Records whose students fell outside the section filter still belong
	// on the sheet.
	for _, r := range records {
		if seen[r.StudentID] {
			continue
		}
		var s models.Student
		if err := ac.DB.First(&s, r.StudentID).Error; err != nil {
			continue
		}
		rows = append(rows, attendanceRow{
			ID:           r.ID,
			StudentID:    s.ID,
			StudentName:  s.Name,
			Section:      s.Section,
			Status:       r.Status,
			CheckinTime:  r.CheckinTime,
			CheckoutTime: r.CheckoutTime,
			IsLate:       r.IsLate,
			MinutesLate:  r.MinutesLate,
		})
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "data": rows, "total": len(rows)})
}

func (ac *AttendanceController) ListByStudent(c *gin.Context) {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	var student models.Student
	if err := ac.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limit, page := pageParams(c)
	var total int64
	base := ac.DB.Model(&models.AttendanceRecord{}).Where("student_id = ?", studentID)
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var records []models.AttendanceRecord
	if err := base.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student, "data": records, "total": total, "page": page, "limit": limit})
}

type simulateScanRequest struct {
	DeviceID   string `json:"deviceId" binding:"required"`
	RFIDCardID string `json:"rfidCardId" binding:"required"`
}

// SimulateScan feeds a tap through the same path a reader uses, for
// development without hardware.
func (ac *AttendanceController) SimulateScan(c *gin.Context) {
	var req simulateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ac.Coord.HandleScan(c.Request.Context(), req.DeviceID, req.RFIDCardID)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch engine.KindOf(err) {
		case engine.KindDeviceNotRegistered:
			status = http.StatusNotFound
		case engine.KindPersistenceFailure:
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error(), "kind": string(engine.KindOf(err))})
		return
	}

	resp := gin.H{"status": string(result.Outcome)}
	if result.Student != nil {
		resp["student_name"] = result.Student.Name
	}
	if result.Session != nil {
		resp["session_id"] = result.Session.ID
	}
	if result.Outcome == engine.OutcomeCheckedIn {
		resp["is_late"] = result.IsLate
		resp["minutes_late"] = result.MinutesLate
	}
	c.JSON(http.StatusOK, resp)
}
