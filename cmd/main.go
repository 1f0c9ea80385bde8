package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Proctorly/config"
	"github.com/lshigami/Proctorly/database"
	_ "github.com/lshigami/Proctorly/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Proctorly/internal/cache"
	adminctrl "github.com/lshigami/Proctorly/internal/controller/admin"
	studentctrl "github.com/lshigami/Proctorly/internal/controller/student"
	"github.com/lshigami/Proctorly/internal/logger"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/lshigami/Proctorly/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Proctorly Exam API
// @version 1.0
// @description Link-based online exam platform: roster-gated access, exactly-once attempt admission, frozen question sets, idempotent grading, and cohort statistics.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://example.com/support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			cache.NewCache,
			NewGinEngine, // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewRosterRepository,
			repository.NewAttemptRepository,
			repository.NewAttemptQuestionRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewEligibilityService,
			service.NewQuestionSetService,
			service.NewAdmissionService,
			service.NewAnswerService,
			service.NewGradingService,
			service.NewStatsService,
			service.NewAdminExamService,
			service.NewRosterService,
			service.NewEssayReviewService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminExamController,
			studentctrl.NewStudentExamController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	// Request logging through the global zerolog instance.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI
	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminExamCtrl *adminctrl.AdminExamController,
	studentExamCtrl *studentctrl.StudentExamController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		examsAdminGroup := adminAPIGroup.Group("/exams")
		examsAdminGroup.POST("", adminExamCtrl.CreateExam)
		examsAdminGroup.GET("", adminExamCtrl.ListExams)
		examsAdminGroup.GET("/:exam_id", adminExamCtrl.GetExam)
		examsAdminGroup.PUT("/:exam_id", adminExamCtrl.UpdateExam)
		examsAdminGroup.POST("/:exam_id/roster", adminExamCtrl.UploadRoster)
		examsAdminGroup.GET("/:exam_id/results", adminExamCtrl.ListResults)

		adminAPIGroup.POST("/attempts/:attempt_id/review-essays", adminExamCtrl.ReviewEssays)
	}

	// Student Routes (prefixed with /api/v1)
	studentAPIGroup := router.Group("/api/v1")
	{
		examGroup := studentAPIGroup.Group("/exams/:link")
		examGroup.POST("/validate-access", studentExamCtrl.ValidateAccess)
		examGroup.GET("/questions", studentExamCtrl.GetQuestions)
		examGroup.POST("/answers", studentExamCtrl.SubmitAnswer)
		examGroup.POST("/submit", studentExamCtrl.SubmitExam)
		examGroup.GET("/stats", studentExamCtrl.GetStats)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Proctorly Exam API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.Option{},
		&model.AllowedStudent{},
		&model.Attempt{},
		&model.AttemptQuestion{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
