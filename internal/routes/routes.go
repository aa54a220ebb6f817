package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/config"
	"github.com/clirdec/presence/internal/controllers"
	"github.com/clirdec/presence/internal/engine"
	"github.com/clirdec/presence/internal/middleware"
	"github.com/clirdec/presence/internal/models"
	"github.com/clirdec/presence/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, coord *engine.Coordinator, hubs *ws.Hubs, log *zap.Logger) {
	authCtrl := &controllers.AuthController{DB: db, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTExpiresIn}
	userCtrl := &controllers.UserController{DB: db}
	studentCtrl := &controllers.StudentController{DB: db}
	classroomCtrl := &controllers.ClassroomController{DB: db}
	subjectCtrl := &controllers.SubjectController{DB: db}
	scheduleCtrl := &controllers.ScheduleController{DB: db}
	sessionCtrl := &controllers.SessionController{DB: db}
	attendanceCtrl := &controllers.AttendanceController{DB: db, Coord: coord}
	deviceCtrl := &controllers.DeviceController{DB: db, Coord: coord}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Reader devices connect here; no auth, they identify via
	// device_register on the socket.
	r.GET("/iot", ws.DeviceHandler(hubs.Devices, coord, hubs, log))

	r.POST("/api/auth/login", authCtrl.Login)

	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{JWTSecret: cfg.JWTSecret})
	api := r.Group("/api", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)

		admin := api.Group("", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", userCtrl.List)
			admin.POST("/users", userCtrl.Create)
			admin.GET("/users/:id", userCtrl.Get)
			admin.PUT("/users/:id", userCtrl.Update)
			admin.DELETE("/users/:id", userCtrl.Delete)

			admin.POST("/students", studentCtrl.Create)
			admin.PUT("/students/:id", studentCtrl.Update)
			admin.DELETE("/students/:id", studentCtrl.Delete)

			admin.POST("/classrooms", classroomCtrl.Create)
			admin.PUT("/classrooms/:id", classroomCtrl.Update)
			admin.DELETE("/classrooms/:id", classroomCtrl.Delete)

			admin.POST("/subjects", subjectCtrl.Create)
			admin.PUT("/subjects/:id", subjectCtrl.Update)
			admin.DELETE("/subjects/:id", subjectCtrl.Delete)

			admin.POST("/schedules", scheduleCtrl.Create)
			admin.PUT("/schedules/:id", scheduleCtrl.Update)
			admin.DELETE("/schedules/:id", scheduleCtrl.Delete)

			admin.PUT("/devices/:deviceId/classroom", deviceCtrl.AssignClassroom)
			admin.DELETE("/devices/:deviceId", deviceCtrl.Deactivate)
		}

		staff := api.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty))
		{
			staff.GET("/students", studentCtrl.List)
			staff.GET("/students/:id", studentCtrl.Get)
			staff.GET("/students/:id/attendance", attendanceCtrl.ListByStudent)

			staff.GET("/classrooms", classroomCtrl.List)
			staff.GET("/classrooms/:id", classroomCtrl.Get)

			staff.GET("/subjects", subjectCtrl.List)
			staff.GET("/subjects/:id", subjectCtrl.Get)

			staff.GET("/schedules", scheduleCtrl.List)
			staff.GET("/schedules/:id", scheduleCtrl.Get)

			staff.GET("/sessions", sessionCtrl.List)
			staff.POST("/sessions", sessionCtrl.Create)
			staff.GET("/sessions/:id", sessionCtrl.Get)
			staff.PATCH("/sessions/:id/end", sessionCtrl.End)
			staff.GET("/sessions/:id/attendance", attendanceCtrl.ListBySession)

			staff.GET("/devices", deviceCtrl.List)
			staff.GET("/devices/:deviceId", deviceCtrl.Get)

			staff.POST("/rfid/simulate", attendanceCtrl.SimulateScan)
		}
	}

	// Dashboards subscribe for live attendance updates.
	r.GET("/ws/monitoring", authMW, ws.MonitoringHandler(hubs.Monitoring))
}
