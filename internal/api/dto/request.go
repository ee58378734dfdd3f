package dto

type StepDTO struct {
	AssigneeID      uint   `json:"assignee_id" binding:"required"`
	Action          string `json:"action" binding:"required,oneof=approve sign review"`
	CanSkip         bool   `json:"can_skip"`
	CommentRequired bool   `json:"comment_required"`
}

type CreateDocumentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Body        string    `json:"body"`
	RecipientID *uint     `json:"recipient_id"`
	Steps       []StepDTO `json:"steps" binding:"required,min=1,dive"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

type AuditModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
