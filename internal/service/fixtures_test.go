package service

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{Secret: "test-secret-with-enough-length-123", ExpireTime: time.Hour}

func testSettings() *GradingSettings {
	return NewGradingSettings(config.GradingConfig{
		LowGradeThreshold: 70,
		RosterTimeout:     2 * time.Second,
		RosterWorkers:     4,
		ReportCacheTTL:    time.Minute,
	})
}

func seedUser(t *testing.T, store *memory.Store, username, first, last string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Password:  "x",
		Email:     username + "@example.com",
		FirstName: first,
		LastName:  last,
		Role:      role,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedCourse(t *testing.T, store *memory.Store, instructorID string) *model.Course {
	t.Helper()
	c := &model.Course{InstructorID: instructorID, Name: "Algebra", Section: "A"}
	require.NoError(t, store.CreateCourse(context.Background(), c))
	return c
}

func seedQuiz(t *testing.T, store *memory.Store, courseID, name string, qa ...string) *model.Quiz {
	t.Helper()
	q := &model.Quiz{CourseID: courseID, Name: name}
	for i := 0; i+1 < len(qa); i += 2 {
		q.Questions = append(q.Questions, model.QuizQuestion{Question: qa[i], Answer: qa[i+1]})
	}
	require.NoError(t, store.CreateQuiz(context.Background(), q))
	return q
}

func seedAssignment(t *testing.T, store *memory.Store, courseID, name string) *model.Material {
	t.Helper()
	m := &model.Material{
		CourseID:    courseID,
		Name:        name,
		Description: name + " description",
		File:        "materials/" + name + ".pdf",
		Type:        model.MaterialAssignment,
	}
	require.NoError(t, store.CreateMaterial(context.Background(), m))
	return m
}

func seedSubmission(t *testing.T, store *memory.Store, materialID string, student *model.User) *model.Submission {
	t.Helper()
	s := &model.Submission{
		MaterialID:      materialID,
		StudentID:       student.ID,
		StudentName:     student.FullName(),
		StudentUsername: student.Username,
		File:            "submissions/" + student.Username + ".zip",
	}
	require.NoError(t, store.CreateSubmission(context.Background(), s))
	return s
}

// fakeCache 以 JSON 形式按 (学生, 代数) 保存报告，行为与 redis 实现一致
type fakeCache struct {
	mu          sync.Mutex
	items       map[string][]byte
	gens        map[string]int64
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte), gens: make(map[string]int64)}
}

func cacheKey(studentID string, gen int64) string {
	return fmt.Sprintf("%s:%d", studentID, gen)
}

func (c *fakeCache) Generation(ctx context.Context, studentID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[studentID], nil
}

func (c *fakeCache) Get(ctx context.Context, studentID string, gen int64, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[cacheKey(studentID, gen)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(ctx context.Context, studentID string, gen int64, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(studentID, gen)] = raw
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, studentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[studentID]++
	c.invalidated = append(c.invalidated, studentID)
	return nil
}

// cached 当前代数下是否有报告
func (c *fakeCache) cached(studentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[cacheKey(studentID, c.gens[studentID])]
	return ok
}
