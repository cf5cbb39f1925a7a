package service

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/util"
	"sync"
	"time"
)

// 未注入 GradingSettings 时使用，与配置默认值一致
var defaultGradingConfig = config.GradingConfig{
	LowGradeThreshold: util.DefaultLowThreshold,
	RosterTimeout:     10 * time.Second,
	RosterWorkers:     8,
	ReportCacheTTL:    5 * time.Minute,
}

// GradingSettings 评分参数快照，配置热更新时整体替换
type GradingSettings struct {
	mu  sync.RWMutex
	cfg config.GradingConfig
}

func NewGradingSettings(cfg config.GradingConfig) *GradingSettings {
	return &GradingSettings{cfg: cfg}
}

// Get nil 接收者返回默认参数
func (s *GradingSettings) Get() config.GradingConfig {
	if s == nil {
		return defaultGradingConfig
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *GradingSettings) Update(cfg config.GradingConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}
