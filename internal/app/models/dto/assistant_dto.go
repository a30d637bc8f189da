package dto

// ChatMessage is one turn of an assistant conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// AssistantChatRequest continues a conversation
type AssistantChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1,max=50,dive"`
}

// DraftNoticeRequest asks the assistant for a notice draft
type DraftNoticeRequest struct {
	Topic    string `json:"topic" binding:"required,max=500"`
	Audience string `json:"audience" binding:"omitempty,oneof=all students faculty"`
	Tone     string `json:"tone" binding:"omitempty,oneof=formal friendly urgent"`
}

// AssistantResponse is the gateway's answer
type AssistantResponse struct {
	Action   string `json:"action" example:"chat"`
	Response string `json:"response"`
}
