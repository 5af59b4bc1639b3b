package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/crewdeck/backend/internal/models"
	"gorm.io/gorm"
)

// exportHeader is the fixed column layout of the project export.
var exportHeader = []string{
	"Project ID",
	"Customer Name",
	"Customer Email",
	"Customer Phone",
	"Date",
	"PO",
	"Address",
	"City",
	"Subdivision",
	"Lot Number",
	"Square Footage",
	"Job Cost Type",
	"Work Type",
	"Notes",
	"Created At",
	"Updated At",
}

// ExportService renders projects as CSV, both as a streamed download and as
// per-region append files on disk.
type ExportService struct {
	db  *gorm.DB
	dir string

	mu sync.Mutex // serializes append-file writes
}

func NewExportService(db *gorm.DB, dir string) *ExportService {
	return &ExportService{db: db, dir: dir}
}

func exportRow(p *models.Project, c *models.Customer) []string {
	var name, email, phone string
	if c != nil {
		name = c.Name
		email = c.Email
		phone = c.Phone
	}

	var sqft string
	if p.SquareFootage != nil {
		sqft = strconv.Itoa(*p.SquareFootage)
	}

	return []string{
		p.ID,
		name,
		email,
		phone,
		p.Date.Format(DateLayout),
		p.PO,
		p.Address,
		p.City,
		p.Subdivision,
		p.LotNumber,
		sqft,
		p.JobCostType,
		p.WorkType,
		p.Notes,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	}
}

// WriteAll streams the full export of one region to w, header first.
func (s *ExportService) WriteAll(w io.Writer, region string) error {
	var projects []models.Project
	err := s.db.Preload("Customer").
		Where("region = ?", region).
		Order("date ASC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for i := range projects {
		p := &projects[i]
		if err := writer.Write(exportRow(p, p.Customer)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// AppendProject appends one project to its region's export file, creating
// the file with a header row when it does not exist yet.
func (s *ExportService) AppendProject(p *models.Project, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	path := s.FilePath(p.Region)

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if isNew {
		if err := writer.Write(exportHeader); err != nil {
			return err
		}
	}
	if err := writer.Write(exportRow(p, c)); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// FilePath returns the append-file location for a region.
func (s *ExportService) FilePath(region string) string {
	return filepath.Join(s.dir, "projects_"+region+".csv")
}
