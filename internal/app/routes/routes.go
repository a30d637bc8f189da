package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusdesk/internal/app/controllers"
	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/middleware"
	"github.com/yigit/campusdesk/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted under /api/v1
type Controllers struct {
	Auth         *controllers.AuthController
	Profile      *controllers.ProfileController
	Academic     *controllers.AcademicController
	Election     *controllers.ElectionController
	Placement    *controllers.PlacementController
	Notice       *controllers.NoticeController
	Campus       *controllers.CampusController
	Notification *controllers.NotificationController
	Assistant    *controllers.AssistantController
	Admin        *controllers.AdminController
	Health       *controllers.HealthController
	Websocket    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.Auth.SignUp)
		auth.POST("/signin", c.Auth.SignIn)
		auth.POST("/refresh", c.Auth.Refresh)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Session routes stay reachable for unverified users so the client can
	// show the awaiting-verification state.
	authenticated.POST("/auth/signout", c.Auth.SignOut)
	authenticated.GET("/auth/session", c.Auth.Session)

	notifications := authenticated.Group("/notifications")
	notifications.Use(authMiddleware.VerifiedProfileRequired())
	{
		notifications.GET("", c.Notification.List)
		notifications.GET("/ws", c.Websocket.HandleConnection)
		notifications.POST("/:id/read", c.Notification.MarkAsRead)
		notifications.POST("/clear", c.Notification.ClearAll)
	}

	// Read-only listings shared by every role
	authenticated.GET("/elections", c.Election.ListElections)
	authenticated.GET("/elections/:id", c.Election.GetElection)
	authenticated.GET("/elections/:id/candidates", c.Election.ListCandidates)
	authenticated.GET("/elections/:id/results", c.Election.Results)

	authenticated.GET("/placements", c.Placement.ListPlacements)
	authenticated.GET("/placements/:id", c.Placement.GetPlacement)

	authenticated.GET("/notices", c.Notice.ListNotices)
	authenticated.GET("/notices/:id", c.Notice.GetNotice)
	authenticated.GET("/notices/:id/attachment", c.Notice.DownloadNoticeAttachment)

	authenticated.GET("/materials", c.Notice.ListMaterials)
	authenticated.GET("/materials/:id", c.Notice.GetMaterial)
	authenticated.GET("/materials/:id/download", c.Notice.DownloadMaterial)
	authenticated.GET("/materials/:id/preview", c.Notice.PreviewMaterial)

	authenticated.GET("/timetables", c.Campus.ListTimetable)
	authenticated.GET("/class-reps", c.Campus.ListClassReps)

	authenticated.POST("/assistant/chat", c.Assistant.Chat)

	// --- Student area ---
	student := authenticated.Group("/student")
	student.Use(authMiddleware.RoleRequired(models.RoleStudent), authMiddleware.ProfileVerificationRequired(models.RoleStudent))
	{
		student.GET("/profile", c.Profile.GetStudentProfile)
		student.PUT("/profile", c.Profile.UpdateStudentProfile)

		student.GET("/attendance", c.Academic.MyAttendance)
		student.GET("/attendance/summary", c.Academic.AttendanceSummary)
		student.GET("/marks", c.Academic.MyMarks)

		student.POST("/elections/:id/vote", c.Election.Vote)

		student.GET("/placements/applications", c.Placement.MyApplications)
		student.POST("/placements/:id/apply", c.Placement.Apply)

		student.POST("/feedback", c.Campus.SubmitFeedback)
		student.GET("/reports", c.Campus.MyReports)

		student.POST("/assistant/recommendations", c.Assistant.StudyRecommendations)
		student.POST("/assistant/attendance-insights", c.Assistant.MyAttendanceInsights)
	}

	// --- Faculty area (admins pass the verification gate) ---
	faculty := authenticated.Group("/faculty")
	faculty.Use(authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin), authMiddleware.ProfileVerificationRequired(models.RoleFaculty))
	{
		faculty.GET("/profile", c.Profile.GetFacultyProfile)
		faculty.PUT("/profile", c.Profile.UpdateFacultyProfile)

		faculty.GET("/students", c.Profile.ListStudents)
		faculty.PATCH("/students/:userId/verify", c.Profile.VerifyStudent)

		faculty.POST("/attendance", c.Academic.MarkAttendance)
		faculty.GET("/attendance", c.Academic.ListAttendance)
		faculty.DELETE("/attendance/:id", c.Academic.DeleteAttendance)

		faculty.POST("/marks", c.Academic.CreateMark)
		faculty.GET("/marks", c.Academic.ListMarks)
		faculty.PUT("/marks/:id", c.Academic.UpdateMark)
		faculty.DELETE("/marks/:id", c.Academic.DeleteMark)

		faculty.POST("/elections", c.Election.CreateElection)
		faculty.PATCH("/elections/:id/status", c.Election.UpdateElectionStatus)
		faculty.DELETE("/elections/:id", c.Election.DeleteElection)
		faculty.POST("/elections/:id/candidates", c.Election.Nominate)
		faculty.PATCH("/candidates/:candidateId/approve", c.Election.ApproveCandidate)
		faculty.DELETE("/candidates/:candidateId", c.Election.DeleteCandidate)

		faculty.POST("/placements", c.Placement.CreatePlacement)
		faculty.DELETE("/placements/:id", c.Placement.DeletePlacement)
		faculty.GET("/placements/:id/applications", c.Placement.ListApplications)
		faculty.PATCH("/applications/:applicationId/status", c.Placement.UpdateApplicationStatus)

		faculty.POST("/notices", c.Notice.CreateNotice)
		faculty.DELETE("/notices/:id", c.Notice.DeleteNotice)
		faculty.POST("/materials", c.Notice.UploadMaterial)
		faculty.DELETE("/materials/:id", c.Notice.DeleteMaterial)

		faculty.PUT("/timetables", c.Campus.UpsertTimetable)
		faculty.DELETE("/timetables/:id", c.Campus.DeleteTimetable)

		faculty.GET("/feedback", c.Campus.ListFeedback)
		faculty.DELETE("/feedback/:id", c.Campus.DeleteFeedback)

		faculty.POST("/reports", c.Campus.CreateReport)
		faculty.GET("/reports", c.Campus.ListReports)
		faculty.DELETE("/reports/:id", c.Campus.DeleteReport)

		faculty.POST("/class-reps", c.Campus.AssignClassRep)
		faculty.DELETE("/class-reps/:id", c.Campus.RemoveClassRep)

		faculty.POST("/alerts", c.Notification.CreateAlert)
		faculty.GET("/alerts", c.Notification.ListAlerts)
		faculty.DELETE("/alerts/:id", c.Notification.DeleteAlert)

		faculty.POST("/assistant/draft-notice", c.Assistant.DraftNotice)
		faculty.POST("/assistant/attendance-insights/:enrollmentNumber", c.Assistant.AttendanceInsights)
	}

	// --- Admin area ---
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/faculty", c.Profile.ListFaculty)
		admin.PATCH("/faculty/:userId/verify", c.Profile.VerifyFaculty)

		admin.GET("/roles", c.Admin.ListRoles)
		admin.POST("/roles", c.Admin.GrantRole)
		admin.DELETE("/roles/:userId/:role", c.Admin.RevokeRole)
	}
}
