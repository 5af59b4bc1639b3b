package models

import (
	"strings"
	"time"
)

// TagDelimiter joins job-cost-type and work-type tag lists into their
// persisted string form. Tags must never contain it.
const TagDelimiter = ","

// Project is a scheduled job for one customer in one region.
type Project struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	Date          time.Time `gorm:"type:date;not null" json:"-"`
	PO            string    `gorm:"size:100" json:"po"`
	Address       string    `gorm:"size:200;not null" json:"address"`
	City          string    `gorm:"size:100" json:"city"`
	Subdivision   string    `gorm:"size:100" json:"subdivision"`
	LotNumber     string    `gorm:"size:50" json:"lot_number"`
	SquareFootage *int      `json:"square_footage"`
	JobCostType   string    `gorm:"size:100" json:"-"` // delimited tag list
	WorkType      string    `gorm:"size:100" json:"-"` // delimited tag list
	Notes         string    `gorm:"type:text" json:"notes"`
	Region        string    `gorm:"size:50;index;not null" json:"region"`
	CustomerID    uint      `gorm:"index;not null" json:"customer_id"`
	Customer      *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// JobCostTags returns the job-cost-type tag list.
func (p *Project) JobCostTags() []string {
	return SplitTags(p.JobCostType)
}

// WorkTags returns the work-type tag list.
func (p *Project) WorkTags() []string {
	return SplitTags(p.WorkType)
}

// SplitTags converts the persisted delimited form back into a tag list. An
// empty string yields an empty, non-nil slice.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, TagDelimiter)
}

// JoinTags converts a tag list into the persisted delimited form.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagDelimiter)
}
