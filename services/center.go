package services

import (
	"context"
	"strings"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCenterRequest struct {
	Name        string          `json:"name" binding:"required"`
	City        string          `json:"city" binding:"required"`
	Email       string          `json:"email" binding:"omitempty,email"`
	OwnerUserID string          `json:"owner_user_id"`
	Fee         decimal.Decimal `json:"fee"`
}

type CenterService struct {
	db *gorm.DB
}

func NewCenterService(db *gorm.DB) *CenterService {
	return &CenterService{db: db}
}

func (s *CenterService) Create(ctx context.Context, req CreateCenterRequest) (*models.Center, error) {
	if !req.Fee.IsPositive() {
		return nil, utils.BadRequestError("Fee must be greater than zero", nil)
	}
	center := models.Center{
		Name:        strings.TrimSpace(req.Name),
		City:        strings.TrimSpace(req.City),
		Email:       strings.ToLower(req.Email),
		OwnerUserID: req.OwnerUserID,
		Fee:         req.Fee.Round(2),
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&center).Error; err != nil {
		return nil, errors.Wrap(err, "create center")
	}
	utils.LogInfo("Center %s (%s) created", center.ID, center.Name)
	return &center, nil
}

func (s *CenterService) Get(ctx context.Context, id string) (*models.Center, error) {
	var center models.Center
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&center).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCenterNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load center")
	}
	return &center, nil
}

func (s *CenterService) List(ctx context.Context, city string, p *utils.Pagination) ([]models.Center, error) {
	query := s.db.WithContext(ctx).Model(&models.Center{})
	if city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count centers")
	}
	p.SetTotal(total)

	var centers []models.Center
	err := query.Order("name").Scopes(p.Scope).Find(&centers).Error
	return centers, errors.Wrap(err, "list centers")
}
