package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

type StudentController struct {
	DB *gorm.DB
}

type createStudentRequest struct {
	StudentID   string `json:"student_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ParentEmail string `json:"parent_email"`
	ParentPhone string `json:"parent_phone"`
	RFIDCardID  string `json:"rfid_card_id"`
	Program     string `json:"program"`
	YearLevel   int    `json:"year_level"`
	Section     string `json:"section"`
	Active      *bool  `json:"active"`
}

type updateStudentRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	ParentEmail *string `json:"parent_email"`
	ParentPhone *string `json:"parent_phone"`
	RFIDCardID  *string `json:"rfid_card_id"`
	Program     *string `json:"program"`
	YearLevel   *int    `json:"year_level"`
	Section     *string `json:"section"`
	Active      *bool   `json:"active"`
}

func (sc *StudentController) List(c *gin.Context) {
	limit, page := pageParams(c)

	base := sc.DB.Model(&models.Student{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		base = base.Where("name ILIKE ? OR student_id ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if section := strings.TrimSpace(c.Query("section")); section != "" {
		base = base.Where("section = ?", section)
	}
	if activeStr := strings.TrimSpace(strings.ToLower(c.Query("active"))); activeStr != "" {
		switch activeStr {
		case "true", "1":
			base = base.Where("active = ?", true)
		case "false", "0":
			base = base.Where("active = ?", false)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active value"})
			return
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var students []models.Student
	if err := base.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": students, "total": total, "page": page, "limit": limit})
}

func (sc *StudentController) Create(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	student := models.Student{
		StudentID:   req.StudentID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ParentEmail: req.ParentEmail,
		ParentPhone: req.ParentPhone,
		RFIDCardID:  req.RFIDCardID,
		Program:     req.Program,
		YearLevel:   req.YearLevel,
		Section:     req.Section,
		Active:      active,
	}
	if err := sc.DB.Create(&student).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "student id or rfid card already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (sc *StudentController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (sc *StudentController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var student models.Student
	if err := sc.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.ParentEmail != nil {
		student.ParentEmail = *req.ParentEmail
	}
	if req.ParentPhone != nil {
		student.ParentPhone = *req.ParentPhone
	}
	if req.RFIDCardID != nil {
		student.RFIDCardID = *req.RFIDCardID
	}
	if req.Program != nil {
		student.Program = *req.Program
	}
	if req.YearLevel != nil {
		student.YearLevel = *req.YearLevel
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := sc.DB.Save(&student).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "student id or rfid card already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (sc *StudentController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := sc.DB.Delete(&models.Student{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student deleted"})
}
