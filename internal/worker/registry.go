package worker

import (
	"context"
	"fmt"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
	"haccp-flow/internal/notification"
)

// Handler delivers one kind of notification intent
type Handler func(ctx context.Context, intent domain.NotificationIntent) error

// Registry holds a handler per intent kind
type Registry map[domain.NotificationKind]Handler

// InitRegistry resolves users and documents for each intent and hands them to sender
func InitRegistry(docs ports.DocumentRepository, users ports.UserRepository, sender notification.Sender) Registry {
	registry := make(Registry)

	registry[domain.NotifyAssignee] = func(ctx context.Context, intent domain.NotificationIntent) error {
		user, doc, err := resolve(ctx, docs, users, intent)
		if err != nil {
			return err
		}
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == intent.TaskID {
				return sender.NotifyAssignee(ctx, user, doc, &doc.Tasks[i])
			}
		}
		return fmt.Errorf("task %d not found in document %d", intent.TaskID, doc.ID)
	}

	registry[domain.NotifyAuthor] = func(ctx context.Context, intent domain.NotificationIntent) error {
		user, doc, err := resolve(ctx, docs, users, intent)
		if err != nil {
			return err
		}
		return sender.NotifyAuthor(ctx, user, doc, intent.Status, intent.Comment)
	}

	return registry
}

func resolve(ctx context.Context, docs ports.DocumentRepository, users ports.UserRepository, intent domain.NotificationIntent) (*domain.User, *domain.Document, error) {
	user, err := users.GetByID(ctx, intent.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, fmt.Errorf("user %d is inactive", user.ID)
	}
	doc, err := docs.GetByID(ctx, intent.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	return user, doc, nil
}
