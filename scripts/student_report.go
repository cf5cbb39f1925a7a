// 导出学生成绩报告
//
// 直接读取数据库生成与 /courses/grades/totalGrades/:studentId 相同的报告，输出 YAML。
// 不读写 redis 缓存。
//
// 用法: go run scripts/student_report.go -student <studentId> [-config configs]

package main

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/service"
	"classroom_backend/pkg/database"
	"classroom_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	studentID := flag.String("student", "", "学生ID")
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	if *studentID == "" {
		log.Fatal("缺少 -student 参数")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Database.Driver == "memory" {
		log.Fatal("内存存储没有持久化数据，请配置 mysql 或 postgres")
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	reports := service.NewReportService(
		repository.NewGradeRepository(db),
		repository.NewMaterialRepository(db),
		repository.NewQuizRepository(db),
		nil,
		service.NewGradingSettings(cfg.Grading),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := reports.Build(ctx, *studentID)
	if err != nil {
		log.Fatalf("生成报告失败: %v", err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		log.Fatalf("输出报告失败: %v", err)
	}
}
