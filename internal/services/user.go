package services

import (
	"errors"

	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/response"
	"gorm.io/gorm"
)

// UserService covers the admin-side account operations.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns every account, oldest first.
func (s *UserService) List() ([]UserInfo, error) {
	var users []models.User
	if err := s.db.Preload("Role").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, toUserInfo(&users[i]))
	}
	return infos, nil
}

// UpdateRole reassigns a user's role by name. Unknown role names are a
// client error; known names missing from the table are materialized from
// the built-in role set.
func (s *UserService) UpdateRole(userID uint, roleName string) (*UserInfo, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	var role models.Role
	err := s.db.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def, ok := models.DefaultRole(roleName)
		if !ok {
			return nil, response.NewBadRequest("unknown role: " + roleName)
		}
		role = models.Role{
			Name:        def.Name,
			Description: def.Description,
			Permissions: def.Permissions,
		}
		err = s.db.Create(&role).Error
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Update("role_id", role.ID).Error; err != nil {
		return nil, err
	}

	user.RoleID = &role.ID
	user.Role = &role
	info := toUserInfo(&user)
	return &info, nil
}

// UpdateStatus enables or disables an account. A disabled account keeps its
// row and role; it just cannot authenticate or pass permission checks.
func (s *UserService) UpdateStatus(userID uint, active bool) (*UserInfo, error) {
	var user models.User
	if err := s.db.Preload("Role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if err := s.db.Model(&user).Update("is_active", active).Error; err != nil {
		return nil, err
	}

	user.IsActive = active
	info := toUserInfo(&user)
	return &info, nil
}

// ListRoles returns the role table.
func (s *UserService) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
