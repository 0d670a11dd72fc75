package model

type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

// Lead 市场线索 由营销人员维护
// swagger:model Lead
type Lead struct {
	UUIDBase
	Name    string     `gorm:"size:100;not null" json:"name"`
	Email   string     `gorm:"size:100" json:"email"`
	Phone   string     `gorm:"size:30" json:"phone"`
	Source  string     `gorm:"size:100" json:"source"`
	Status  LeadStatus `gorm:"type:enum('NEW','CONTACTED','QUALIFIED','CONVERTED','LOST');default:'NEW'" json:"status"`
	Notes   string     `gorm:"type:text" json:"notes"`
	OwnerID string     `gorm:"type:varchar(36);index" json:"ownerId"` // 负责该线索的营销人员档案ID
}

func (Lead) TableName() string {
	return "leads"
}
