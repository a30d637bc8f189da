package models

import "time"

// AttendanceStatus is the state recorded for one class
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Attendance is one student's status for a subject on a date
type Attendance struct {
	ID               int64            `json:"id"`
	EnrollmentNumber string           `json:"enrollmentNumber"`
	Subject          string           `json:"subject"`
	Date             time.Time        `json:"date"`
	Status           AttendanceStatus `json:"status"`
	MarkedBy         int64            `json:"markedBy"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// AttendanceFilter narrows attendance listings
type AttendanceFilter struct {
	EnrollmentNumber string
	Subject          string
	From             *time.Time
	To               *time.Time
	Limit            int
	Offset           int
}

// AttendanceSummary aggregates one subject. Late counts as attended.
type AttendanceSummary struct {
	Subject    string  `json:"subject"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Late       int     `json:"late"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// Mark is a score for one assessment
type Mark struct {
	ID               int64     `json:"id"`
	EnrollmentNumber string    `json:"enrollmentNumber"`
	Subject          string    `json:"subject"`
	ExamType         string    `json:"examType" example:"midterm"`
	MarksObtained    float64   `json:"marksObtained"`
	MaxMarks         float64   `json:"maxMarks"`
	Semester         int       `json:"semester"`
	Remarks          string    `json:"remarks,omitempty"`
	CreatedBy        int64     `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MarkFilter narrows mark listings
type MarkFilter struct {
	EnrollmentNumber string
	Subject          string
	Semester         int
	Limit            int
	Offset           int
}

// Timetable is one slot of a class schedule
type Timetable struct {
	ID          int64     `json:"id"`
	Department  string    `json:"department"`
	Semester    int       `json:"semester"`
	Section     string    `json:"section"`
	DayOfWeek   string    `json:"dayOfWeek" example:"monday"`
	Period      int       `json:"period"`
	Subject     string    `json:"subject"`
	FacultyName string    `json:"facultyName"`
	Room        string    `json:"room,omitempty"`
	StartTime   string    `json:"startTime" example:"09:00"`
	EndTime     string    `json:"endTime" example:"09:50"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Feedback is a student submission. EnrollmentNumber is nil when anonymous.
type Feedback struct {
	ID               int64     `json:"id"`
	EnrollmentNumber *string   `json:"enrollmentNumber,omitempty"`
	Category         string    `json:"category"`
	Subject          string    `json:"subject,omitempty"`
	Message          string    `json:"message"`
	Rating           int       `json:"rating"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PerformanceReport is a faculty-written semester review
type PerformanceReport struct {
	ID               int64     `json:"id"`
	EnrollmentNumber string    `json:"enrollmentNumber"`
	Semester         int       `json:"semester"`
	Summary          string    `json:"summary"`
	Strengths        string    `json:"strengths,omitempty"`
	Improvements     string    `json:"improvements,omitempty"`
	Grade            string    `json:"grade,omitempty"`
	CreatedBy        int64     `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ClassRepresentative is the elected or appointed representative of a class
type ClassRepresentative struct {
	ID               int64     `json:"id"`
	EnrollmentNumber string    `json:"enrollmentNumber"`
	StudentName      string    `json:"studentName"`
	Department       string    `json:"department"`
	Semester         int       `json:"semester"`
	Section          string    `json:"section"`
	AcademicYear     string    `json:"academicYear" example:"2025-26"`
	AssignedBy       int64     `json:"assignedBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ClassFilter selects a class by department, semester and section
type ClassFilter struct {
	Department string
	Semester   int
	Section    string
}
