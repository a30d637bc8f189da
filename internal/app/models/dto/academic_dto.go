package dto

// AttendanceRecord is one student's status inside a bulk marking
type AttendanceRecord struct {
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required,enrollment"`
	Status           string `json:"status" binding:"required,oneof=present absent late"`
}

// MarkAttendanceRequest records attendance for a subject on a date; existing entries are overwritten
type MarkAttendanceRequest struct {
	Subject string             `json:"subject" binding:"required,max=100"`
	Date    string             `json:"date" binding:"required,datetime=2006-01-02" example:"2025-09-01"`
	Records []AttendanceRecord `json:"records" binding:"required,min=1,max=500,dive"`
}

// AttendanceQuery filters attendance listings
type AttendanceQuery struct {
	EnrollmentNumber string `form:"enrollmentNumber"`
	Subject          string `form:"subject"`
	From             string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To               string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// MarkRequest creates or replaces a mark
type MarkRequest struct {
	EnrollmentNumber string  `json:"enrollmentNumber" binding:"required,enrollment"`
	Subject          string  `json:"subject" binding:"required,max=100"`
	ExamType         string  `json:"examType" binding:"required,max=50" example:"midterm"`
	MarksObtained    float64 `json:"marksObtained" binding:"min=0"`
	MaxMarks         float64 `json:"maxMarks" binding:"required,gt=0"`
	Semester         int     `json:"semester" binding:"required,min=1,max=12"`
	Remarks          string  `json:"remarks" binding:"omitempty,max=500"`
}

// MarkQuery filters mark listings
type MarkQuery struct {
	EnrollmentNumber string `form:"enrollmentNumber"`
	Subject          string `form:"subject"`
	Semester         int    `form:"semester" binding:"omitempty,min=1,max=12"`
}

// TimetableRequest upserts one slot
type TimetableRequest struct {
	Department  string `json:"department" binding:"required,max=100"`
	Semester    int    `json:"semester" binding:"required,min=1,max=12"`
	Section     string `json:"section" binding:"required,max=10"`
	DayOfWeek   string `json:"dayOfWeek" binding:"required,oneof=monday tuesday wednesday thursday friday saturday"`
	Period      int    `json:"period" binding:"required,min=1,max=12"`
	Subject     string `json:"subject" binding:"required,max=100"`
	FacultyName string `json:"facultyName" binding:"required,max=100"`
	Room        string `json:"room" binding:"omitempty,max=50"`
	StartTime   string `json:"startTime" binding:"required,datetime=15:04" example:"09:00"`
	EndTime     string `json:"endTime" binding:"required,datetime=15:04" example:"09:50"`
}

// TimetableQuery selects a class
type TimetableQuery struct {
	Department string `form:"department" binding:"required"`
	Semester   int    `form:"semester" binding:"required,min=1,max=12"`
	Section    string `form:"section" binding:"required"`
}

// FeedbackRequest is a student submission
type FeedbackRequest struct {
	Category  string `json:"category" binding:"required,oneof=course faculty facility general"`
	Subject   string `json:"subject" binding:"omitempty,max=100"`
	Message   string `json:"message" binding:"required,min=5,max=2000"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Anonymous bool   `json:"anonymous"`
}

// PerformanceReportRequest creates a report
type PerformanceReportRequest struct {
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required,enrollment"`
	Semester         int    `json:"semester" binding:"required,min=1,max=12"`
	Summary          string `json:"summary" binding:"required,max=4000"`
	Strengths        string `json:"strengths" binding:"omitempty,max=2000"`
	Improvements     string `json:"improvements" binding:"omitempty,max=2000"`
	Grade            string `json:"grade" binding:"omitempty,max=5"`
}

// ClassRepresentativeRequest assigns a representative
type ClassRepresentativeRequest struct {
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required,enrollment"`
	Department       string `json:"department" binding:"required,max=100"`
	Semester         int    `json:"semester" binding:"required,min=1,max=12"`
	Section          string `json:"section" binding:"required,max=10"`
	AcademicYear     string `json:"academicYear" binding:"required,len=7" example:"2025-26"`
}

// AlertRequest issues a notification to everyone or one student
type AlertRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Message          string `json:"message" binding:"required,max=2000"`
	Type             string `json:"type" binding:"omitempty,oneof=notice marks placement attendance"`
	EnrollmentNumber string `json:"enrollmentNumber" binding:"omitempty,enrollment"`
}
