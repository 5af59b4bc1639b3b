package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/response"
	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// CustomerRecord is one incoming customer row from a CSV import or an API
// request.
type CustomerRecord struct {
	Name      string
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// ImportResult reports what a reconciliation batch did.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// Reconcile merges a batch of customer records into the directory, keyed by
// phone number. Rows with an empty phone are skipped. A phone match means a
// destructive overwrite of the display fields; anything else is an insert.
// The whole batch is one transaction: any failure rolls everything back.
func (s *CustomerService) Reconcile(records []CustomerRecord) (*ImportResult, error) {
	result := &ImportResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			rec.Phone = strings.TrimSpace(rec.Phone)
			if rec.Phone == "" {
				continue
			}

			var existing models.Customer
			err := tx.Where("phone = ?", rec.Phone).First(&existing).Error
			switch {
			case err == nil:
				// Incoming values win even when blank.
				updates := map[string]interface{}{
					"name":       rec.Name,
					"first_name": rec.FirstName,
					"last_name":  rec.LastName,
					"email":      rec.Email,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
				result.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				customer := models.Customer{
					Name:      rec.Name,
					FirstName: rec.FirstName,
					LastName:  rec.LastName,
					Phone:     rec.Phone,
					Email:     rec.Email,
				}
				if err := tx.Create(&customer).Error; err != nil {
					return err
				}
				result.Imported++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ImportCSV reconciles a customer CSV read from r (the upload path).
func (s *CustomerService) ImportCSV(r io.Reader) (*ImportResult, error) {
	records, err := ParseCustomerCSV(r)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}
	return s.Reconcile(records)
}

// ImportFromFile reconciles the server-local customer CSV (the bulk path).
func (s *CustomerService) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, response.NewBadRequest(fmt.Sprintf("cannot open customer csv: %v", err))
	}
	defer f.Close()

	records, err := ParseCustomerCSV(f)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}
	return s.Reconcile(records)
}

// ParseCustomerCSV reads the expected customer list format. Columns are
// case-sensitive: Customer, First_Name, Last_Name, Phone, Main_Email. The
// display name falls back to "First Last" when the company column is blank.
func ParseCustomerCSV(r io.Reader) ([]CustomerRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv has no header row: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["Phone"]; !ok {
		return nil, errors.New("csv is missing the Phone column")
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var records []CustomerRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed csv row: %w", err)
		}

		rec := CustomerRecord{
			Name:      field(row, "Customer"),
			FirstName: field(row, "First_Name"),
			LastName:  field(row, "Last_Name"),
			Phone:     field(row, "Phone"),
			Email:     field(row, "Main_Email"),
		}
		if rec.Name == "" {
			rec.Name = strings.TrimSpace(rec.FirstName + " " + rec.LastName)
		}
		records = append(records, rec)
	}

	return records, nil
}

// findOrCreateCustomer resolves the customer for a project write inside the
// caller's open transaction. Creating here (instead of after commit) makes
// the generated id available for the project row. An existing customer only
// picks up a new email; the directory fields stay as imported.
func findOrCreateCustomer(tx *gorm.DB, name, phone, email string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, response.NewBadRequest("customer_phone is required")
	}

	var customer models.Customer
	err := tx.Where("phone = ?", phone).First(&customer).Error
	if err == nil {
		if email != "" && email != customer.Email {
			if err := tx.Model(&customer).Update("email", email).Error; err != nil {
				return nil, err
			}
		}
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{Name: name, Phone: phone, Email: email}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns the whole customer directory.
func (s *CustomerService) List() ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.Order("id ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// GetByID returns one customer with project summaries.
func (s *CustomerService) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Preload("Projects").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("customer not found")
		}
		return nil, err
	}
	return &customer, nil
}

// Search matches customers whose name, last name, phone or email contains
// the query. An empty query yields an empty result, not an error.
func (s *CustomerService) Search(query string) ([]models.Customer, error) {
	if query == "" {
		return []models.Customer{}, nil
	}

	pattern := "%" + query + "%"
	var customers []models.Customer
	err := s.db.
		Where("name LIKE ? OR last_name LIKE ? OR phone LIKE ? OR email LIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(10).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
