package models

import "time"

// Notice is a published announcement with an optional PDF attachment
type Notice struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category" example:"exam"`
	Audience       string    `json:"audience" example:"all"`
	AttachmentKey  *string   `json:"-"`
	AttachmentName *string   `json:"attachmentName,omitempty"`
	AttachmentURL  string    `json:"attachmentUrl,omitempty"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NoticeFilter narrows notice listings
type NoticeFilter struct {
	Audiences []string
	Category  string
	Limit     int
	Offset    int
}

// StudyMaterial is an uploaded course file of any type
type StudyMaterial struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	Semester    int       `json:"semester"`
	Department  string    `json:"department,omitempty"`
	FileKey     string    `json:"-"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	FileURL     string    `json:"fileUrl,omitempty"`
	Previewable bool      `json:"previewable"`
	UploadedBy  int64     `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MaterialFilter narrows study material listings
type MaterialFilter struct {
	Subject    string
	Semester   int
	Department string
	Limit      int
	Offset     int
}

// Alert is a faculty-issued notification ('notifications'). A nil
// EnrollmentNumber addresses every connected user.
type Alert struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	Type             string    `json:"type" example:"attendance"`
	EnrollmentNumber *string   `json:"enrollmentNumber,omitempty"`
	CreatedBy        int64     `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}
