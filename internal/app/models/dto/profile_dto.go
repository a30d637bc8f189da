package dto

// UpdateProfileRequest updates the caller's own profile. Identity fields are not editable.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Phone       string `json:"phone" binding:"omitempty,max=20"`
	Section     string `json:"section" binding:"omitempty,max=10"`
	Designation string `json:"designation" binding:"omitempty,max=100"`
}

// VerifyProfileRequest sets a profile's verify flag
type VerifyProfileRequest struct {
	Verify *bool `json:"verify" binding:"required"`
}

// ProfileListQuery filters the student directory
type ProfileListQuery struct {
	Department string `form:"department"`
	Semester   int    `form:"semester" binding:"omitempty,min=1,max=12"`
	Section    string `form:"section"`
	Verify     *bool  `form:"verify"`
	Search     string `form:"search"`
}

// GrantRoleRequest grants a role to a user
type GrantRoleRequest struct {
	UserID int64  `json:"userId" binding:"required,min=1"`
	Role   string `json:"role" binding:"required,oneof=student faculty admin"`
}
