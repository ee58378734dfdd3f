package notification

import (
	"context"
	"fmt"

	"haccp-flow/internal/domain"

	"go.uber.org/zap"
)

// Sender delivers a rendered notification to one user.
type Sender interface {
	NotifyAssignee(ctx context.Context, user *domain.User, doc *domain.Document, task *domain.Task) error
	NotifyAuthor(ctx context.Context, user *domain.User, doc *domain.Document, status domain.DocumentStatus, comment *string) error
}

func AssigneeMessage(doc *domain.Document, task *domain.Task) string {
	return fmt.Sprintf("Document #%d %q: step %d (%s) is waiting for you", doc.ID, doc.Title, task.Step, task.Action.Label())
}

func AuthorMessage(doc *domain.Document, status domain.DocumentStatus, comment *string) string {
	msg := fmt.Sprintf("Document #%d %q was %s", doc.ID, doc.Title, status)
	if comment != nil && *comment != "" {
		msg += ": " + *comment
	}
	return msg
}

// LogSender writes messages to the log instead of a chat. It is the sender
// used when no bot is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("sender")}
}

func (s *LogSender) NotifyAssignee(ctx context.Context, user *domain.User, doc *domain.Document, task *domain.Task) error {
	s.send(user, AssigneeMessage(doc, task))
	return nil
}

func (s *LogSender) NotifyAuthor(ctx context.Context, user *domain.User, doc *domain.Document, status domain.DocumentStatus, comment *string) error {
	s.send(user, AuthorMessage(doc, status, comment))
	return nil
}

func (s *LogSender) send(user *domain.User, text string) {
	s.logger.Info("notification",
		zap.Uint("user_id", user.ID),
		zap.String("chat_id", user.ChatID),
		zap.String("text", text))
}
