package model

// Comment 资料下的讨论留言
//
// swagger:model Comment
type Comment struct {
	UUIDBase
	MaterialID string `gorm:"type:varchar(36);index;not null" json:"materialId"`
	UserID     string `gorm:"type:varchar(36);index;not null" json:"userId"`
	UserName   string `gorm:"size:200" json:"user"`
	Message    string `gorm:"type:text;not null" json:"message"`
	IsArchived bool   `gorm:"default:false" json:"isArchived"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentFilter 空字段表示不过滤
type CommentFilter struct {
	MaterialID string
	UserID     string
	IsArchived *bool
}
