package model

// swagger:model Course
type Course struct {
	UUIDBase
	InstructorID string `gorm:"type:varchar(36);index;not null" json:"instructorId"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Section      string `gorm:"size:100" json:"section"`
	Description  string `gorm:"type:text" json:"description"`
	File         string `gorm:"size:255" json:"file"`
	IsArchived   bool   `gorm:"default:false" json:"isArchived"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseStudent 选课记录，花名册顺序按 CreatedAt
type CourseStudent struct {
	UUIDBase
	CourseID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_student" json:"courseId"`
	StudentID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_student;index" json:"studentId"`
}

func (CourseStudent) TableName() string {
	return "course_students"
}
