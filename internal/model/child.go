package model

// swagger:model Group
type Group struct {
	BaseModel
	Name string `gorm:"size:100;not null" json:"name"`
}

func (Group) TableName() string {
	return "groups"
}

// swagger:model Child
type Child struct {
	BaseModel
	FullName string `gorm:"size:255;not null" json:"fullName"`
	GroupID  *uint  `gorm:"index" json:"groupId"` // 未分班时为空
}

func (Child) TableName() string {
	return "children"
}
