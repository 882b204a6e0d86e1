package services

import (
	"context"
	"log"
	"slices"
	"strings"

	"ff-tournament-system/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type ConductorService struct {
	DB *gorm.DB
}

func NewConductorService(db *gorm.DB) *ConductorService {
	return &ConductorService{DB: db}
}

type ConductorInput struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	RollNo string `json:"rollNo"`
	Role   string `json:"role"`
}

var roleCaser = cases.Title(language.English)

// NormalizeRole maps free-form role input ("referee", " TECHNICAL ") onto one
// of the conductor roles. ok is false for anything else.
func NormalizeRole(raw string) (role string, ok bool) {
	role = roleCaser.String(strings.TrimSpace(raw))
	return role, slices.Contains(models.ConductorRoles, role)
}

func (in *ConductorInput) normalize() error {
	in.Name = clean(in.Name)
	in.Phone = strings.ReplaceAll(clean(in.Phone), " ", "")
	in.RollNo = clean(in.RollNo)

	if in.Name == "" || in.Phone == "" || in.Role == "" {
		return NewValidationError("MISSING_FIELDS", "name, phone and role are required")
	}
	if !validPhone(in.Phone) {
		return NewValidationError("INVALID_PHONE", "phone must be 7 to 15 digits with an optional leading +")
	}
	role, ok := NormalizeRole(in.Role)
	if !ok {
		return NewValidationError("INVALID_ROLE", "role must be one of "+strings.Join(models.ConductorRoles, ", "))
	}
	in.Role = role
	return nil
}

func (s *ConductorService) Create(ctx context.Context, in ConductorInput) (*models.Conductor, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &models.Conductor{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Phone:  in.Phone,
		RollNo: in.RollNo,
		Role:   in.Role,
	}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, storageError(err, "", "", "CONDUCTOR_EXISTS", "conductor already exists")
	}
	log.Printf("[CONDUCTORS] added %s as %s", c.Name, c.Role)
	return c, nil
}

// List returns conductors, optionally filtered by role.
func (s *ConductorService) List(ctx context.Context, role string) ([]models.Conductor, error) {
	q := s.DB.WithContext(ctx).Order("created_at ASC")
	if role != "" {
		normalized, ok := NormalizeRole(role)
		if !ok {
			return nil, NewValidationError("INVALID_ROLE", "unknown role "+role)
		}
		q = q.Where("role = ?", normalized)
	}
	var out []models.Conductor
	if err := q.Find(&out).Error; err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return out, nil
}

func (s *ConductorService) Get(ctx context.Context, id string) (*models.Conductor, error) {
	var c models.Conductor
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, storageError(err, "CONDUCTOR_NOT_FOUND", "conductor not found", "", "")
	}
	return &c, nil
}

// Update replaces every editable field of a conductor.
func (s *ConductorService) Update(ctx context.Context, id string, in ConductorInput) (*models.Conductor, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&models.Conductor{}).Where("id = ?", id).Updates(map[string]any{
		"name":    in.Name,
		"phone":   in.Phone,
		"roll_no": in.RollNo,
		"role":    in.Role,
	})
	if res.Error != nil {
		return nil, storageError(res.Error, "", "", "", "")
	}
	if res.RowsAffected == 0 {
		return nil, NewNotFoundError("CONDUCTOR_NOT_FOUND", "conductor not found")
	}
	return s.Get(ctx, id)
}

func (s *ConductorService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Conductor{})
	if res.Error != nil {
		return storageError(res.Error, "", "", "", "")
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError("CONDUCTOR_NOT_FOUND", "conductor not found")
	}
	log.Printf("[CONDUCTORS] removed %s", id)
	return nil
}
