package app

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/pkg/logger"
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 内存存储的演示账号，仅在非 release 模式下创建
const demoPassword = "classroom123"

var demoAccounts = []model.User{
	{Username: "admin", Email: "admin@classroom.local", FirstName: "Site", LastName: "Admin", Role: model.Admin},
	{Username: "instructor", Email: "instructor@classroom.local", FirstName: "Demo", LastName: "Instructor", Role: model.Instructor},
	{Username: "student", Email: "student@classroom.local", FirstName: "Demo", LastName: "Student", Role: model.Student},
}

func seedDemoAccounts(ctx context.Context, store *memory.Store) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, account := range demoAccounts {
		u := account
		u.Password = string(hashed)
		if err := store.CreateUser(ctx, &u); err != nil {
			return err
		}
		logger.Log.Debug("demo account created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	}
	return nil
}
