package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"labquote/models"
	"labquote/repository"
	"labquote/utils"

	"gorm.io/gorm"
)

var roles = []string{models.RoleAdmin, models.RoleSales, models.RoleViewer}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func normalizeUser(req *models.UserRequest, creating bool) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return validation("invalid email %q", req.Email)
	}
	if req.Name == "" {
		return validation("name is required")
	}
	code, err := repository.NormalizeUserCode(req.UserCode)
	if err != nil {
		return validation("%v", err)
	}
	req.UserCode = code
	if req.Role == "" {
		req.Role = models.RoleSales
	}
	if !contains(roles, req.Role) {
		return validation("unknown role %q", req.Role)
	}
	if creating && len(req.Password) < 8 {
		return validation("password must be at least 8 characters")
	}
	if !creating && req.Password != "" && len(req.Password) < 8 {
		return validation("password must be at least 8 characters")
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, actor Actor, req models.UserRequest) (*models.User, error) {
	if err := normalizeUser(&req, true); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		UserCode:     req.UserCode,
		Role:         req.Role,
		Phone:        req.Phone,
		Suspended:    req.Suspended,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return translate(err, "user email or code")
		}
		return record(tx, actor, EntityUser, user.ID, "create", "%s (%s) created", user.Email, user.UserCode)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, actor Actor, id uint, req models.UserRequest) (*models.User, error) {
	if err := normalizeUser(&req, false); err != nil {
		return nil, err
	}
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user")
		}
		if user.UserCode != req.UserCode {
			var issued int64
			if err := tx.Model(&models.Quotation{}).Where("created_by = ?", id).Count(&issued).Error; err != nil {
				return err
			}
			if issued > 0 {
				return validation("user code cannot change after quotations were issued")
			}
		}
		user.Email = req.Email
		user.Name = req.Name
		user.UserCode = req.UserCode
		user.Role = req.Role
		user.Phone = req.Phone
		user.Suspended = req.Suspended
		if req.Password != "" {
			hash, err := utils.HashPassword(req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if err := tx.Save(&user).Error; err != nil {
			return translate(err, "user email or code")
		}
		if user.Suspended {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
				return err
			}
		}
		return record(tx, actor, EntityUser, user.ID, "update", "%s updated", user.Email)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, query string, page, size int) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if query != "" {
		like := likePattern(query)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(user_code) LIKE ?)", like, like, like)
	}
	var users []models.User
	total, err := findPage(q, "name, id", page, size, &users)
	return users, total, err
}

// SetSuspended toggles sign-in for a user and ends their sessions.
func (s *UserService) SetSuspended(ctx context.Context, actor Actor, id uint, suspended bool) error {
	if actor.UserID == id && suspended {
		return validation("you cannot suspend yourself")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("suspended", suspended)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("user", id)
		}
		if suspended {
			if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
				return err
			}
		}
		action := "unsuspend"
		if suspended {
			action = "suspend"
		}
		return record(tx, actor, EntityUser, id, action, "user %d %sed", id, action)
	})
}

// Authenticate checks credentials and returns the active user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !utils.ValidatePassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	if user.Suspended {
		return nil, ErrForbidden
	}
	return &user, nil
}

// EnsureAdmin creates the first admin when the users table is empty.
func (s *UserService) EnsureAdmin(ctx context.Context, req models.UserRequest) (*models.User, bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, false, nil
	}
	req.Role = models.RoleAdmin
	u, err := s.Create(ctx, Actor{Name: "system"}, req)
	return u, err == nil, err
}
