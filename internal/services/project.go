package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/logger"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire format for project dates.
const DateLayout = "2006-01-02"

// Notifier delivers customer-facing messages after a project write. Delivery
// happens outside the request transaction and must never fail the request.
type Notifier interface {
	ProjectCreated(project *models.Project, customer *models.Customer)
	ProjectUpdated(project *models.Project, customer *models.Customer)
}

type ProjectService struct {
	db       *gorm.DB
	notifier Notifier
	exporter *ExportService
}

// NewProjectService wires the project workflow. notifier and exporter may be
// nil, which disables the corresponding post-commit step.
func NewProjectService(db *gorm.DB, notifier Notifier, exporter *ExportService) *ProjectService {
	return &ProjectService{db: db, notifier: notifier, exporter: exporter}
}

// ProjectRequest is the write payload for creating or replacing a project.
type ProjectRequest struct {
	CustomerName  string   `json:"customer_name" binding:"required"`
	CustomerPhone string   `json:"customer_phone" binding:"required"`
	CustomerEmail string   `json:"customer_email"`
	Date          string   `json:"date" binding:"required"`
	PO            string   `json:"po"`
	Address       string   `json:"address" binding:"required"`
	City          string   `json:"city"`
	Subdivision   string   `json:"subdivision"`
	LotNumber     string   `json:"lot_number"`
	SquareFootage *int     `json:"square_footage"`
	JobCostType   []string `json:"job_cost_type"`
	WorkType      []string `json:"work_type"`
	Notes         string   `json:"notes"`
}

// ProjectResponse is the read shape for a project, with the customer fields
// flattened in.
type ProjectResponse struct {
	ID            string   `json:"id"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	CustomerEmail string   `json:"customer_email"`
	Date          string   `json:"date"`
	PO            string   `json:"po"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Subdivision   string   `json:"subdivision"`
	LotNumber     string   `json:"lot_number"`
	SquareFootage *int     `json:"square_footage"`
	JobCostType   []string `json:"job_cost_type"`
	WorkType      []string `json:"work_type"`
	Notes         string   `json:"notes"`
	Region        string   `json:"region"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func toProjectResponse(p *models.Project) *ProjectResponse {
	resp := &ProjectResponse{
		ID:            p.ID,
		Date:          p.Date.Format(DateLayout),
		PO:            p.PO,
		Address:       p.Address,
		City:          p.City,
		Subdivision:   p.Subdivision,
		LotNumber:     p.LotNumber,
		SquareFootage: p.SquareFootage,
		JobCostType:   p.JobCostTags(),
		WorkType:      p.WorkTags(),
		Notes:         p.Notes,
		Region:        p.Region,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Customer != nil {
		resp.CustomerName = p.Customer.Name
		resp.CustomerPhone = p.Customer.Phone
		resp.CustomerEmail = p.Customer.Email
	}
	return resp
}

func parseProjectDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, response.NewBadRequest(
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return date, nil
}

func validateTags(field string, tags []string) error {
	for _, tag := range tags {
		if strings.Contains(tag, models.TagDelimiter) {
			return response.NewBadRequest(
				fmt.Sprintf("%s tag %q must not contain %q", field, tag, models.TagDelimiter))
		}
	}
	return nil
}

// Create stores a new project in the given region, resolving its customer by
// phone inside the same transaction. Notification and export run after the
// commit and cannot fail the request.
func (s *ProjectService) Create(region string, req *ProjectRequest) (*ProjectResponse, error) {
	date, err := parseProjectDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateTags("job_cost_type", req.JobCostType); err != nil {
		return nil, err
	}
	if err := validateTags("work_type", req.WorkType); err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:            uuid.NewString(),
		Date:          date,
		PO:            req.PO,
		Address:       req.Address,
		City:          req.City,
		Subdivision:   req.Subdivision,
		LotNumber:     req.LotNumber,
		SquareFootage: req.SquareFootage,
		JobCostType:   models.JoinTags(req.JobCostType),
		WorkType:      models.JoinTags(req.WorkType),
		Notes:         req.Notes,
		Region:        region,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := findOrCreateCustomer(tx, req.CustomerName, req.CustomerPhone, req.CustomerEmail)
		if err != nil {
			return err
		}
		project.CustomerID = customer.ID
		project.Customer = customer
		return tx.Create(project).Error
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(project, true, func(n Notifier, p *models.Project, c *models.Customer) {
		n.ProjectCreated(p, c)
	})

	return toProjectResponse(project), nil
}

// List returns the projects of one region ordered by date.
func (s *ProjectService) List(region string) ([]*ProjectResponse, error) {
	var projects []models.Project
	err := s.db.Preload("Customer").
		Where("region = ?", region).
		Order("date ASC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	responses := make([]*ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, toProjectResponse(&projects[i]))
	}
	return responses, nil
}

// Get returns one project. A project that exists in a different region is
// reported as not found.
func (s *ProjectService) Get(region, id string) (*ProjectResponse, error) {
	project, err := s.find(region, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *ProjectService) find(region, id string) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Customer").
		Where("id = ? AND region = ?", id, region).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Update replaces every field of an existing project, including the customer
// assignment. Changing the phone re-resolves the customer; the previous one
// is kept even if orphaned, so its history survives until the project is
// deleted.
func (s *ProjectService) Update(region, id string, req *ProjectRequest) (*ProjectResponse, error) {
	date, err := parseProjectDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateTags("job_cost_type", req.JobCostType); err != nil {
		return nil, err
	}
	if err := validateTags("work_type", req.WorkType); err != nil {
		return nil, err
	}

	project, err := s.find(region, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := findOrCreateCustomer(tx, req.CustomerName, req.CustomerPhone, req.CustomerEmail)
		if err != nil {
			return err
		}

		// A full replace covers the customer's display fields too.
		if customer.Name != req.CustomerName || customer.Email != req.CustomerEmail {
			updates := map[string]interface{}{
				"name":  req.CustomerName,
				"email": req.CustomerEmail,
			}
			if err := tx.Model(customer).Updates(updates).Error; err != nil {
				return err
			}
			customer.Name = req.CustomerName
			customer.Email = req.CustomerEmail
		}

		project.Date = date
		project.PO = req.PO
		project.Address = req.Address
		project.City = req.City
		project.Subdivision = req.Subdivision
		project.LotNumber = req.LotNumber
		project.SquareFootage = req.SquareFootage
		project.JobCostType = models.JoinTags(req.JobCostType)
		project.WorkType = models.JoinTags(req.WorkType)
		project.Notes = req.Notes
		project.CustomerID = customer.ID
		project.Customer = customer

		return tx.Save(project).Error
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(project, false, func(n Notifier, p *models.Project, c *models.Customer) {
		n.ProjectUpdated(p, c)
	})

	return toProjectResponse(project), nil
}

// Delete removes a project. When this was the customer's last project the
// customer row goes with it.
func (s *ProjectService) Delete(region, id string) error {
	project, err := s.find(region, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
			return err
		}

		var remaining int64
		err := tx.Model(&models.Project{}).
			Where("customer_id = ?", project.CustomerID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Delete(&models.Customer{}, project.CustomerID).Error
		}
		return nil
	})
}

// afterWrite runs the notification and export steps in the background. Both
// are best effort: a panic or error is logged and swallowed. Only freshly
// created projects go to the export file.
func (s *ProjectService) afterWrite(project *models.Project, export bool, notify func(Notifier, *models.Project, *models.Customer)) {
	p := *project
	var c *models.Customer
	if project.Customer != nil {
		cc := *project.Customer
		c = &cc
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Str("project_id", p.ID).
					Msg("post-commit hook panicked")
			}
		}()

		if export && s.exporter != nil {
			if err := s.exporter.AppendProject(&p, c); err != nil {
				logger.Error().Err(err).Str("project_id", p.ID).
					Msg("export append failed")
			}
		}
		if s.notifier != nil && c != nil {
			notify(s.notifier, &p, c)
		}
	}()
}
