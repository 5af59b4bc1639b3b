package services

import (
	"fmt"

	"github.com/crewdeck/backend/internal/config"
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/logger"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends project texts through Twilio. A service built from a
// disabled config is a no-op.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

func NewSMSService(cfg config.SMSConfig) *SMSService {
	if !cfg.Enabled || cfg.AccountSID == "" {
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSService{client: client, from: cfg.FromNumber}
}

// Enabled reports whether the service can actually send.
func (s *SMSService) Enabled() bool {
	return s.client != nil
}

// SendProjectConfirmation texts the customer after their project is booked.
func (s *SMSService) SendProjectConfirmation(project *models.Project, customer *models.Customer) error {
	body := fmt.Sprintf("Hi %s, your project at %s is scheduled for %s.",
		customer.DisplayName(), project.Address, project.Date.Format(DateLayout))
	return s.send(customer.Phone, body)
}

// SendProjectUpdate texts the customer after their project changed.
func (s *SMSService) SendProjectUpdate(project *models.Project, customer *models.Customer) error {
	body := fmt.Sprintf("Hi %s, your project at %s has been updated. New date: %s.",
		customer.DisplayName(), project.Address, project.Date.Format(DateLayout))
	return s.send(customer.Phone, body)
}

func (s *SMSService) send(to, body string) error {
	if !s.Enabled() {
		return nil
	}
	if to == "" {
		return nil
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		logger.Infof("[SMS] Failed to send to %s: %v", to, err)
		return err
	}

	if msg.Sid != nil {
		logger.Infof("[SMS] Sent message %s to %s", *msg.Sid, to)
	}
	return nil
}
