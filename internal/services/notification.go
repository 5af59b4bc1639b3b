package services

import (
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/logger"
)

// NotificationService fans project events out to SMS and email. Channel
// failures are logged and swallowed; a booked project is never rolled back
// because a message did not go out.
type NotificationService struct {
	sms   *SMSService
	email *EmailService
}

func NewNotificationService(sms *SMSService, email *EmailService) *NotificationService {
	return &NotificationService{sms: sms, email: email}
}

func (s *NotificationService) ProjectCreated(project *models.Project, customer *models.Customer) {
	if s.sms != nil {
		if err := s.sms.SendProjectConfirmation(project, customer); err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).
				Msg("sms confirmation failed")
		}
	}
	if s.email != nil {
		if err := s.email.SendProjectConfirmation(project, customer); err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).
				Msg("email confirmation failed")
		}
	}
}

func (s *NotificationService) ProjectUpdated(project *models.Project, customer *models.Customer) {
	if s.sms != nil {
		if err := s.sms.SendProjectUpdate(project, customer); err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).
				Msg("sms update failed")
		}
	}
	if s.email != nil {
		if err := s.email.SendProjectUpdate(project, customer); err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).
				Msg("email update failed")
		}
	}
}
