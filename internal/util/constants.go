package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// 花名册/成绩报告中引用记录缺失时的占位文本
const (
	UnknownTask         = "Unknown Task"
	UnknownMaterial     = "Unknown material"
	NoDescription       = "No description"
	NoFile              = "No file"
	QuizNotTaken        = "Quiz not taken"
	PerformingWell      = "You are performing well in all areas."
	WeaknessQuiz        = "Quiz"
	WeaknessTask        = "Task"
	WeaknessNone        = "None"
	DefaultLowThreshold = 70.0
)
