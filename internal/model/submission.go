package model

// Submission 学生对作业类资料的提交。Grade 为 nil 表示尚未评分，与 0 分区分开
//
// swagger:model Submission
type Submission struct {
	UUIDBase
	MaterialID      string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_material_student" json:"materialId"`
	StudentID       string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_material_student;index" json:"studentId"`
	StudentName     string   `gorm:"size:200" json:"studentName"`
	StudentUsername string   `gorm:"size:100" json:"studentUsername"`
	Description     string   `gorm:"type:text" json:"description"`
	File            string   `gorm:"size:255" json:"file"`
	Grade           *float64 `json:"grade"`
	IsArchived      bool     `gorm:"default:false" json:"isArchived"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) IsGraded() bool {
	return s.Grade != nil
}

// SubmissionFilter 按字段精确匹配，空字段表示不过滤
type SubmissionFilter struct {
	StudentID  string
	MaterialID string
	IsArchived *bool
}
