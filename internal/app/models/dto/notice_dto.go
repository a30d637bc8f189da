package dto

// CreateNoticeRequest is the multipart form of a notice; the PDF is the optional "attachment" file
type CreateNoticeRequest struct {
	Title    string `form:"title" binding:"required,max=200"`
	Content  string `form:"content" binding:"required,max=10000"`
	Category string `form:"category" binding:"omitempty,max=50"`
	Audience string `form:"audience" binding:"omitempty,oneof=all students faculty"`
}

// UploadMaterialRequest is the multipart form of a study material; the file is the "file" field
type UploadMaterialRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"omitempty,max=2000"`
	Subject     string `form:"subject" binding:"required,max=100"`
	Semester    int    `form:"semester" binding:"required,min=1,max=12"`
	Department  string `form:"department" binding:"omitempty,max=100"`
}

// MaterialQuery filters study materials
type MaterialQuery struct {
	Subject    string `form:"subject"`
	Semester   int    `form:"semester" binding:"omitempty,min=1,max=12"`
	Department string `form:"department"`
}

// PreviewResponse is returned instead of the file when it cannot be rendered inline
type PreviewResponse struct {
	PreviewAvailable bool   `json:"previewAvailable" example:"false"`
	Message          string `json:"message" example:"Preview not available for this file type"`
	DownloadURL      string `json:"downloadUrl"`
}
