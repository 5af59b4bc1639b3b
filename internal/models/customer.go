package models

import "strings"

// Customer is one entry in the customer directory. The phone number is the
// natural dedup key for CSV reconciliation and is unique at the storage
// level.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100" json:"name"` // company/display name
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Email     string    `gorm:"size:120" json:"email"`
	Projects  []Project `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
}

func (Customer) TableName() string { return "customers" }

// DisplayName returns the company name, falling back to "First Last".
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
