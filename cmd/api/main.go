package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/testofislamworld/islamic-quiz-backend/internal/config"
	"github.com/testofislamworld/islamic-quiz-backend/internal/handler"
	"github.com/testofislamworld/islamic-quiz-backend/internal/middleware"
	pgRepo "github.com/testofislamworld/islamic-quiz-backend/internal/repository/postgres"
	redisRepo "github.com/testofislamworld/islamic-quiz-backend/internal/repository/redis"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
	"github.com/testofislamworld/islamic-quiz-backend/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	categoryRepo := pgRepo.NewCategoryRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	progressionRepo := pgRepo.NewProgressionRepo(db)
	drawRepo := pgRepo.NewLuckyDrawRepo(db)
	userDirectory := pgRepo.NewUserDirectoryRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Выбираем реализацию почтовых уведомлений.
	// Без ключа Resend победители не получают писем, но розыгрыши работают.
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.ResendAPIKey != "" {
		from := cfg.Email.FromEmail
		if cfg.Email.FromName != "" {
			from = fmt.Sprintf("%s <%s>", cfg.Email.FromName, cfg.Email.FromEmail)
		}
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, from)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Почтовые уведомления: Resend")
	} else {
		log.Println("Почтовые уведомления отключены (RESEND_API_KEY не задан)")
	}

	// Инициализируем сервисы
	categoryService := service.NewCategoryService(categoryRepo)
	quizService := service.NewQuizService(quizRepo, categoryRepo)
	progressionService := service.NewProgressionService(progressionRepo, categoryRepo, quizRepo, drawRepo, cacheRepo, cfg.Progression.AdvancementPolicy)
	drawService := service.NewLuckyDrawService(drawRepo, progressionRepo, categoryRepo, quizRepo, cacheRepo, userDirectory, progressionService, emailService)

	// Инициализируем обработчики
	categoryHandler := handler.NewCategoryHandler(categoryService)
	quizHandler := handler.NewQuizHandler(quizService)
	progressionHandler := handler.NewProgressionHandler(progressionService)
	drawHandler := handler.NewLuckyDrawHandler(drawService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Контекст для управления жизненным циклом фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем планировщик розыгрышей
	scheduler := service.NewDrawScheduler(drawService, time.Duration(cfg.LuckyDraw.SchedulerIntervalMin)*time.Minute)
	go scheduler.Start(ctx)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Прогресс пользователя
		progression := api.Group("/progression")
		progression.Use(authMiddleware.RequireAuth())
		{
			progression.POST("/init", progressionHandler.InitProgression)
			progression.POST("/reset", progressionHandler.ResetProgression)
			progression.GET("/available", progressionHandler.AvailableQuizzes)

			quizByID := progression.Group("/quiz/:id")
			quizByID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizByID.GET("", progressionHandler.GetQuiz)
				quizByID.POST("/submit", progressionHandler.SubmitQuiz)
			}
		}

		// Доступность категорий
		category := api.Group("/category")
		category.Use(authMiddleware.RequireAuth())
		{
			category.GET("/available", progressionHandler.AvailableCategories)
		}

		// Розыгрыши для пользователя
		luckydraw := api.Group("/luckydraw")
		luckydraw.Use(authMiddleware.RequireAuth())
		{
			luckydraw.GET("/history", drawHandler.UserDrawHistory)
			luckydraw.GET("/upcoming", drawHandler.UpcomingDraws)
		}

		// Административные маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			// Категории
			categories := admin.Group("/categories")
			{
				categories.POST("", categoryHandler.CreateCategory)
				categories.GET("", categoryHandler.ListCategories)

				categoryByID := categories.Group("/:id")
				categoryByID.Use(middleware.ExtractUintParam("id", "categoryID"))
				{
					categoryByID.GET("", categoryHandler.GetCategory)
					categoryByID.PUT("", categoryHandler.UpdateCategory)
					categoryByID.DELETE("", categoryHandler.DeleteCategory)
					categoryByID.GET("/quizzes", quizHandler.ListQuizzesByCategory)
				}
			}

			// Квизы
			quizzes := admin.Group("/quizzes")
			{
				quizzes.POST("", quizHandler.CreateQuiz)

				quizByID := quizzes.Group("/:id")
				quizByID.Use(middleware.ExtractUintParam("id", "quizID"))
				{
					quizByID.GET("", quizHandler.GetQuiz)
					quizByID.PUT("", quizHandler.UpdateQuiz)
					quizByID.DELETE("", quizHandler.DeleteQuiz)
				}
			}

			// Розыгрыши
			draws := admin.Group("/luckydraw")
			{
				draws.POST("", drawHandler.CreateDraw)
				draws.GET("", drawHandler.ListDraws)
				draws.GET("/stats", drawHandler.Stats)
				draws.GET("/winner-stats", drawHandler.WinnerStats)

				drawByID := draws.Group("/:id")
				drawByID.Use(middleware.ExtractUintParam("id", "drawID"))
				{
					drawByID.GET("", drawHandler.GetDraw)
					drawByID.PUT("", drawHandler.UpdateDraw)
					drawByID.DELETE("", drawHandler.DeleteDraw)
					drawByID.POST("/cancel", drawHandler.CancelDraw)
					drawByID.POST("/reschedule", drawHandler.RescheduleDraw)
					drawByID.POST("/execute", drawHandler.ExecuteDraw)
					drawByID.GET("/eligible", drawHandler.EligibleUsers)
					drawByID.POST("/eligible/refresh", drawHandler.RefreshEligibleUsers)
					drawByID.GET("/winners", drawHandler.Winners)
					drawByID.GET("/winners/export", drawHandler.ExportWinners)
				}
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем планировщик и прочие фоновые горутины
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
