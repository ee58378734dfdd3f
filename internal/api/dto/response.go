package dto

type CreateDocumentResponse struct {
	ID uint `json:"id"`
}

type DecisionResponse struct {
	TaskID         uint   `json:"task_id"`
	DocumentID     uint   `json:"document_id"`
	DocumentStatus string `json:"document_status"`
	CurrentStep    int    `json:"current_step"`
	Notifications  int    `json:"notifications"`
}

type AuditModeResponse struct {
	Enabled bool `json:"enabled"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
