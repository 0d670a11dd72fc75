package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// LeadService 市场线索管理，营销人员只能操作自己名下的线索
type LeadService struct {
	Leads LeadStore
}

func NewLeadService(leads LeadStore) *LeadService {
	return &LeadService{Leads: leads}
}

func (s *LeadService) canManage(actor *model.Profile) bool {
	return model.CapabilitiesFor(actor.Role).CanManageLeads
}

func (s *LeadService) Create(actor *model.Profile, lead *model.Lead) error {
	if !s.canManage(actor) {
		return util.ErrPermissionDenied
	}
	if lead.Name == "" {
		return util.NewValidationError("name")
	}
	if lead.Status == "" {
		lead.Status = model.LeadNew
	}
	lead.OwnerID = actor.ID
	return s.Leads.Create(lead)
}

func (s *LeadService) get(actor *model.Profile, id string) (*model.Lead, error) {
	if !s.canManage(actor) {
		return nil, util.ErrPermissionDenied
	}
	lead, err := s.Leads.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLeadNotFound
		}
		return nil, err
	}
	if actor.Role != model.RoleAdmin && lead.OwnerID != actor.ID {
		return nil, util.ErrPermissionDenied
	}
	return lead, nil
}

func (s *LeadService) Get(actor *model.Profile, id string) (*model.Lead, error) {
	return s.get(actor, id)
}

// LeadUpdate 可编辑字段
type LeadUpdate struct {
	Name   *string           `json:"name"`
	Email  *string           `json:"email"`
	Phone  *string           `json:"phone"`
	Source *string           `json:"source"`
	Status *model.LeadStatus `json:"status"`
	Notes  *string           `json:"notes"`
}

func (s *LeadService) Update(actor *model.Profile, id string, update LeadUpdate) (*model.Lead, error) {
	lead, err := s.get(actor, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, util.NewValidationError("name")
		}
		lead.Name = *update.Name
	}
	if update.Email != nil {
		lead.Email = *update.Email
	}
	if update.Phone != nil {
		lead.Phone = *update.Phone
	}
	if update.Source != nil {
		lead.Source = *update.Source
	}
	if update.Status != nil {
		switch *update.Status {
		case model.LeadNew, model.LeadContacted, model.LeadQualified, model.LeadConverted, model.LeadLost:
			lead.Status = *update.Status
		default:
			return nil, util.NewValidationError("status")
		}
	}
	if update.Notes != nil {
		lead.Notes = *update.Notes
	}

	if err := s.Leads.Update(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *LeadService) Delete(actor *model.Profile, id string) error {
	if _, err := s.get(actor, id); err != nil {
		return err
	}
	return s.Leads.Delete(id)
}

// List 管理员看全部，营销人员只看自己名下的
func (s *LeadService) List(actor *model.Profile, status model.LeadStatus, query string, limit, offset int) ([]model.Lead, int64, error) {
	if !s.canManage(actor) {
		return nil, 0, util.ErrPermissionDenied
	}
	ownerID := actor.ID
	if actor.Role == model.RoleAdmin {
		ownerID = ""
	}
	return s.Leads.List(ownerID, status, query, limit, offset)
}
