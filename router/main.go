package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/database"
	"github.com/schoolhub/records-api/handlers"
	attendance_handlers "github.com/schoolhub/records-api/handlers/attendance"
	auth_handlers "github.com/schoolhub/records-api/handlers/auth"
	course_handlers "github.com/schoolhub/records-api/handlers/course"
	dashboard_handlers "github.com/schoolhub/records-api/handlers/dashboard"
	marks_handlers "github.com/schoolhub/records-api/handlers/marks"
	student_handlers "github.com/schoolhub/records-api/handlers/student"
	teacher_handlers "github.com/schoolhub/records-api/handlers/teacher"
	"github.com/schoolhub/records-api/services"
	"github.com/schoolhub/records-api/services/storage"
	"github.com/schoolhub/records-api/utils"
	"github.com/schoolhub/records-api/utils/auth"
	"github.com/schoolhub/records-api/utils/cache"
	"github.com/schoolhub/records-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "school-records-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs login brute force protection; the API still works
	// without it, just without lockouts
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for student photos is optional as well
	var storageClient *storage.Client
	if os.Getenv("STORAGE_BUCKET") != "" {
		storageClient, err = storage.NewClient(storage.Config{
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			Region:    os.Getenv("STORAGE_REGION"),
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			CDNURL:    os.Getenv("STORAGE_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Photo uploads will be disabled.", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	courseHandler := course_handlers.NewCourseHandler(db)
	studentHandler := student_handlers.NewStudentHandler(db, storageClient)
	teacherHandler := teacher_handlers.NewTeacherHandler(db)

	marksService := services.NewMarksService(db)
	marksHandler := marks_handlers.NewMarksHandler(db, marksService)

	attendanceHandler := attendance_handlers.NewAttendanceHandler(db)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile route (protected)
	api.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)

	// Dashboard (any authenticated account; payload varies by affiliation)
	api.Get("/dashboard", authMiddleware.Required(), dashboardHandler.Dashboard)

	// Courses: any authenticated principal can read, only admins mutate
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", authMiddleware.RequireAdmin(), courseHandler.CreateCourse)
	courses.Put("/:id", authMiddleware.RequireAdmin(), courseHandler.UpdateCourse)
	courses.Get("/:id/confirm-delete", authMiddleware.RequireAdmin(), courseHandler.ConfirmDeleteCourse)
	courses.Delete("/:id", authMiddleware.RequireAdmin(), courseHandler.DeleteCourse)

	// Students: any authenticated principal can read, admin manages records
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/", studentHandler.ListStudents)
	students.Get("/by-course", studentHandler.ListByCourse)
	students.Get("/by-course/:id", studentHandler.ListForCourse)
	students.Get("/:id", studentHandler.GetStudent)
	students.Post("/", authMiddleware.RequireAdmin(), studentHandler.CreateStudent)
	students.Put("/:id", authMiddleware.RequireAdmin(), studentHandler.UpdateStudent)
	students.Get("/:id/confirm-delete", authMiddleware.RequireAdmin(), studentHandler.ConfirmDeleteStudent)
	students.Delete("/:id", authMiddleware.RequireAdmin(), studentHandler.DeleteStudent)
	students.Post("/:id/photo", authMiddleware.RequireAdmin(), studentHandler.UploadPhoto)
	students.Get("/:id/result-card", authMiddleware.RequireStaff(), marksHandler.ResultCard)

	// Teachers: any authenticated principal can read, only admins mutate
	teachers := api.Group("/teachers", authMiddleware.Required())
	teachers.Get("/", teacherHandler.ListTeachers)
	teachers.Get("/by-course", teacherHandler.ListByCourse)
	teachers.Get("/by-course/:id", teacherHandler.ListForCourse)
	teachers.Get("/:id", teacherHandler.GetTeacher)
	teachers.Post("/", authMiddleware.RequireAdmin(), teacherHandler.CreateTeacher)
	teachers.Put("/:id", authMiddleware.RequireAdmin(), teacherHandler.UpdateTeacher)
	teachers.Get("/:id/confirm-delete", authMiddleware.RequireAdmin(), teacherHandler.ConfirmDeleteTeacher)
	teachers.Delete("/:id", authMiddleware.RequireAdmin(), teacherHandler.DeleteTeacher)

	// Marks workflow: staff record, students read their own
	marks := api.Group("/marks", authMiddleware.Required(), authMiddleware.RequireStaff())
	marks.Get("/dashboard", marksHandler.Dashboard)
	marks.Get("/course/:id", marksHandler.CourseRoster)
	marks.Post("/course/:course_id/student/:student_id", marksHandler.SubmitMark)

	api.Get("/my-marks", authMiddleware.Required(), marksHandler.MyMarks)

	// Attendance
	attendance := api.Group("/attendance", authMiddleware.Required(), authMiddleware.RequireStaff())
	attendance.Post("/", attendanceHandler.RecordAttendance)
	attendance.Get("/course/:id", attendanceHandler.CourseAttendance)

	api.Get("/my-attendance", authMiddleware.Required(), attendanceHandler.MyAttendance)
}
