package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

// GetConfig reads the SMTP settings from system config on every send, so an
// admin change takes effect without a restart.
func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// SendProjectConfirmation mails the customer after their project is booked.
// Disabled or unconfigured email is a silent no-op.
func (s *EmailService) SendProjectConfirmation(project *models.Project, customer *models.Customer) error {
	return s.sendProjectMail(project, customer,
		fmt.Sprintf("Project scheduled for %s", project.Date.Format(DateLayout)),
		"Your project has been scheduled.")
}

// SendProjectUpdate mails the customer after their project changed.
func (s *EmailService) SendProjectUpdate(project *models.Project, customer *models.Customer) error {
	return s.sendProjectMail(project, customer,
		fmt.Sprintf("Project updated for %s", project.Date.Format(DateLayout)),
		"Your project details have been updated.")
}

func (s *EmailService) sendProjectMail(project *models.Project, customer *models.Customer, subject, intro string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if customer == nil || customer.Email == "" {
		return nil
	}

	body := s.buildProjectBody(project, customer, intro)
	return s.sendEmail(config, []string{customer.Email}, subject, body)
}

func (s *EmailService) buildProjectBody(p *models.Project, c *models.Customer, intro string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<p>Hello %s,</p>", c.DisplayName()))
	sb.WriteString(fmt.Sprintf("<p>%s</p>", intro))
	sb.WriteString("<table style=\"border-collapse: collapse; margin-bottom: 20px;\">")

	rows := []struct{ label, value string }{
		{"Date", p.Date.Format(DateLayout)},
		{"Address", p.Address},
		{"City", p.City},
		{"Subdivision", p.Subdivision},
		{"Lot Number", p.LotNumber},
		{"Work Type", strings.Join(p.WorkTags(), ", ")},
	}

	for _, r := range rows {
		if r.value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>", r.label, r.value))
	}
	sb.WriteString("</table>")

	if p.Notes != "" {
		sb.WriteString(fmt.Sprintf("<p>Notes: %s</p>", p.Notes))
	}
	sb.WriteString("<p>Reply to this email with any questions.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent notification to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
