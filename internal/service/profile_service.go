package service

import (
	"context"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type ProfileService struct {
	Profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{Profiles: profiles}
}

// Resolve 按外部用户ID查档案，首次访问自动建档，令牌里的资料变更时同步回写
func (s *ProfileService) Resolve(ctx context.Context, claims *util.Claims) (*model.Profile, error) {
	profile, err := s.Profiles.GetByExternalUserID(claims.Subject)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		name := claims.Name
		if name == "" {
			name = "User"
		}
		profile = &model.Profile{
			ExternalUserID: claims.Subject,
			Name:           name,
			Email:          claims.Email,
			ImageURL:       claims.ImageURL,
			Role:           model.RoleStudent,
		}
		if err := s.Profiles.Create(profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if claims.Name != "" && (profile.Name != claims.Name || profile.Email != claims.Email || profile.ImageURL != claims.ImageURL) {
		profile.Name = claims.Name
		profile.Email = claims.Email
		profile.ImageURL = claims.ImageURL
		if err := s.Profiles.Update(profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *ProfileService) GetByID(id string) (*model.Profile, error) {
	profile, err := s.Profiles.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ProfileUpdate 用户可自行修改的字段，角色变更走 UpdateRole
type ProfileUpdate struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

func (s *ProfileService) UpdateSelf(profile *model.Profile, update ProfileUpdate) (*model.Profile, error) {
	if update.Name != nil {
		if *update.Name == "" {
			return nil, util.NewValidationError("name")
		}
		profile.Name = *update.Name
	}
	if update.ImageURL != nil {
		profile.ImageURL = *update.ImageURL
	}
	if err := s.Profiles.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateRole 变更用户角色，仅限具备用户管理能力的管理员
func (s *ProfileService) UpdateRole(actor *model.Profile, targetID string, role model.Role) error {
	if !model.CapabilitiesFor(actor.Role).CanManageUsers {
		return util.ErrPermissionDenied
	}
	if _, err := s.Profiles.GetByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrProfileNotFound
		}
		return err
	}
	return s.Profiles.UpdateRole(targetID, role)
}

// Search 供讲师选择与管理端用户管理使用，结果不含搜索者本人
func (s *ProfileService) Search(actor *model.Profile, query string, limit, offset int) ([]model.Profile, int64, error) {
	if !actor.Role.IsStaff() {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.Profiles.Search(query, actor.ID, limit, offset)
}
