package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/config"
	"github.com/zaqqye/seb_proctor/internal/controllers"
	"github.com/zaqqye/seb_proctor/internal/exam"
	"github.com/zaqqye/seb_proctor/internal/middleware"
	"github.com/zaqqye/seb_proctor/internal/store"
	"github.com/zaqqye/seb_proctor/internal/ws"
)

type Deps struct {
	Store store.MetadataStore
	Exams *exam.Controller
	Hubs  *ws.Hubs
	Log   *zap.Logger
}

func Register(r *gin.Engine, cfg *config.Config, deps Deps) {
	examCtrl := &controllers.ExamController{Exams: deps.Exams, Hubs: deps.Hubs, Log: deps.Log}
	healthCtrl := &controllers.HealthController{Store: deps.Store}

	// Public
	r.GET("/healthz", healthCtrl.Get)

	// Protected
	authMW := middleware.AuthMiddleware(middleware.AuthConfig{JWTSecret: cfg.JWTSecret})
	api := r.Group("/api/v1", authMW)
	{
		// Siswa: the monitored client, acting on its own record
		siswa := api.Group("/exam", middleware.RequireRoles(middleware.RoleSiswa))
		{
			siswa.POST("/start", examCtrl.StartSelf)
			siswa.POST("/violations", examCtrl.ViolationSelf)
			siswa.POST("/end", examCtrl.EndSelf)
			siswa.GET("/me", examCtrl.GetSelf)
			siswa.GET("/ws", ws.StudentHandler(deps.Hubs))
		}

		// Pengawas area (and admin): oversight of any record
		pengawas := api.Group("/pengawas", middleware.RequireRoles(middleware.RolePengawas, middleware.RoleAdmin))
		{
			pengawas.GET("/ws", ws.MonitoringHandler(deps.Hubs.Monitoring))
			pengawas.GET("/exams/:user_id", examCtrl.GetMetadata)
			pengawas.GET("/exams/:user_id/start_time", examCtrl.GetStartTime)
			pengawas.GET("/exams/:user_id/end_time", examCtrl.GetEndTime)
			pengawas.GET("/exams/:user_id/violations", examCtrl.GetViolationTimes)
			pengawas.GET("/exams/:user_id/kicked", examCtrl.IsKicked)
			pengawas.POST("/exams/:user_id/violations", examCtrl.AddViolation)
			pengawas.POST("/exams/:user_id/end", examCtrl.SetEnd)
		}
	}
}
