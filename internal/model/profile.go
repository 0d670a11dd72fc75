package model

type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleTeacher  Role = "TEACHER"
	RoleAdmin    Role = "ADMIN"
	RoleMarketer Role = "MARKETER"
)

// Capabilities 每个请求解析一次，随上下文下发，避免各处重复判角色
type Capabilities struct {
	CanEditCourses    bool `json:"canEditCourses"`
	CanApproveCourses bool `json:"canApproveCourses"`
	CanModerateChat   bool `json:"canModerateChat"`
	CanManageLeads    bool `json:"canManageLeads"`
	CanManageUsers    bool `json:"canManageUsers"`
}

func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{
			CanEditCourses:    true,
			CanApproveCourses: true,
			CanModerateChat:   true,
			CanManageLeads:    true,
			CanManageUsers:    true,
		}
	case RoleTeacher:
		return Capabilities{
			CanEditCourses:  true,
			CanModerateChat: true,
		}
	case RoleMarketer:
		return Capabilities{
			CanManageLeads: true,
		}
	default:
		return Capabilities{}
	}
}

// IsStaff TEACHER/ADMIN 视为教学人员
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Profile 身份提供方账号到内部档案的映射，首次访问时自动创建
// swagger:model Profile
type Profile struct {
	UUIDBase
	ExternalUserID string `gorm:"size:191;uniqueIndex;not null" json:"externalUserId"`
	Name           string `gorm:"size:100;not null" json:"name"`
	Email          string `gorm:"size:100" json:"email"`
	ImageURL       string `gorm:"size:255" json:"imageUrl"`
	Role           Role   `gorm:"type:enum('STUDENT','TEACHER','ADMIN','MARKETER');default:'STUDENT'" json:"role"`
}

func (Profile) TableName() string {
	return "profiles"
}

// SafeProfile 消息作者等场景下对外暴露的最小档案信息
type SafeProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Role     Role   `json:"role"`
}

func (p *Profile) Safe() SafeProfile {
	return SafeProfile{
		ID:       p.ID,
		Name:     p.Name,
		ImageURL: p.ImageURL,
		Role:     p.Role,
	}
}
