package services

import (
	"errors"

	"github.com/crewdeck/backend/internal/config"
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/internal/utils"
	"github.com/crewdeck/backend/pkg/logger"
	"github.com/crewdeck/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the account shape returned by login and profile reads.
type UserInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Permissions int64  `json:"permissions"`
	IsActive    bool   `json:"is_active"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

func toUserInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.RoleName(),
		Permissions: user.PermissionMask(),
		IsActive:    user.IsActive,
	}
}

// Signup registers a new account with the viewer role.
func (s *AuthService) Signup(req *SignupRequest) (*UserInfo, error) {
	var count int64
	s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("username already taken")
	}
	s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("email already registered")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role, err := s.findOrCreateRole("viewer")
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		IsActive: true,
		RoleID:   &role.ID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	user.Role = role

	info := toUserInfo(&user)
	return &info, nil
}

// Login checks credentials and issues a JWT. Disabled accounts cannot log
// in even with the right password.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	err := s.db.Preload("Role").Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid username or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid username or password")
	}

	if !user.IsActive {
		return nil, response.NewForbidden("account is disabled")
	}

	expireHours := 24
	if config.GlobalConfig != nil && config.GlobalConfig.JWT.ExpireHour > 0 {
		expireHours = config.GlobalConfig.JWT.ExpireHour
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.RoleName(), expireHours)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, User: toUserInfo(&user)}, nil
}

// GetUserByID returns the profile of one account.
func (s *AuthService) GetUserByID(id uint) (*UserInfo, error) {
	var user models.User
	if err := s.db.Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	info := toUserInfo(&user)
	return &info, nil
}

// ChangePassword verifies the old password before storing the new one.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if !utils.CheckPassword(oldPassword, user.Password) {
		return response.NewBadRequest("old password is incorrect")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password", hashed).Error
}

// CreateAdminIfNotExists provisions the bootstrap administrator from config.
// An existing account with the configured username is left untouched.
func (s *AuthService) CreateAdminIfNotExists(cfg config.AdminConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", cfg.Username).Count(&count)
	if count > 0 {
		return nil
	}

	role, err := s.findOrCreateRole(models.AdminRoleName)
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: hashed,
		IsActive: true,
		RoleID:   &role.ID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return err
	}

	logger.Infof("created bootstrap admin account %q", cfg.Username)
	return nil
}

// findOrCreateRole loads a role row, materializing it from the built-in role
// table when seeding has not run.
func (s *AuthService) findOrCreateRole(name string) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def, ok := models.DefaultRole(name)
	if !ok {
		return nil, response.NewBadRequest("unknown role: " + name)
	}

	role = models.Role{
		Name:        def.Name,
		Description: def.Description,
		Permissions: def.Permissions,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
