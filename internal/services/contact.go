package services

import (
	"context"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type ContactService struct {
	store *store.Store
	log   *logger.Logger
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Message = strings.TrimSpace(in.Message)
	if err := apierr.Validate(in); err != nil {
		return nil, err
	}
	msg := &models.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
	}
	if err := s.store.ContactMessages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.log.Info("Contact message received", "id", msg.ID, "email", msg.Email)
	return msg, nil
}

// List returns messages newest first. unreadOnly hides messages already
// marked read.
func (s *ContactService) List(ctx context.Context, unreadOnly bool) ([]models.ContactMessage, error) {
	q := newestFirst
	if unreadOnly {
		q = q.Where("read", false)
	}
	return s.store.ContactMessages.Find(ctx, q)
}

func (s *ContactService) MarkRead(ctx context.Context, id string) (*models.ContactMessage, error) {
	msg, err := s.store.ContactMessages.FindByID(ctx, id)
	if err != nil {
		return nil, apierr.FromStore(err, "Message")
	}
	if msg.Read {
		return msg, nil
	}
	msg.Read = true
	if err := s.store.ContactMessages.Update(ctx, msg); err != nil {
		return nil, apierr.FromStore(err, "Message")
	}
	return msg, nil
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return apierr.FromStore(s.store.ContactMessages.Delete(ctx, id), "Message")
}
