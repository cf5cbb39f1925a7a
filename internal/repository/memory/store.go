// Package memory 内存存储实现，用于 database.driver=memory 的本地运行和单元测试。
// 唯一约束与 SQL 表结构保持一致。
package memory

import (
	"classroom_backend/internal/model"
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

type Store struct {
	mu sync.RWMutex

	users       map[string]model.User
	courses     map[string]model.Course
	enrollments map[string][]string // courseID -> studentIDs（按选课顺序）
	materials   map[string]model.Material
	quizzes     map[string]model.Quiz
	submissions map[string]model.Submission
	events      map[string]model.GradeEvent
	attempts    map[string]model.QuizAttempt
	comments    map[string]model.Comment

	// 插入顺序，列表查询按此排序
	order map[string]int64
	seq   int64

	// FailFor 对指定学生ID的读取返回该错误，用于模拟部分失败
	FailFor map[string]error
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]model.User),
		courses:     make(map[string]model.Course),
		enrollments: make(map[string][]string),
		materials:   make(map[string]model.Material),
		quizzes:     make(map[string]model.Quiz),
		submissions: make(map[string]model.Submission),
		events:      make(map[string]model.GradeEvent),
		attempts:    make(map[string]model.QuizAttempt),
		comments:    make(map[string]model.Comment),
		order:       make(map[string]int64),
		FailFor:     make(map[string]error),
	}
}

func (s *Store) stamp(b *model.UUIDBase) {
	if b.ID == "" {
		b.ID = model.GenerateUUID()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.seq++
	s.order[b.ID] = s.seq
}

func (s *Store) failure(studentID string) error {
	if err, ok := s.FailFor[studentID]; ok {
		return err
	}
	return nil
}

func ctxErr(ctx context.Context) error {
	return ctx.Err()
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	s.stamp(&user.UUIDBase)
	s.users[user.ID] = *user
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(id); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ---- courses ----

func (s *Store) CreateCourse(ctx context.Context, course *model.Course) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&course.UUIDBase)
	s.courses[course.ID] = *course
	return nil
}

func (s *Store) FindCourseByID(ctx context.Context, id string) (*model.Course, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *Store) SaveCourse(ctx context.Context, course *model.Course) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	course.UpdatedAt = time.Now()
	s.courses[course.ID] = *course
	return nil
}

func (s *Store) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.enrollments[courseID] {
		if id == studentID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.enrollments[courseID] = append(s.enrollments[courseID], studentID)
	return nil
}

func (s *Store) ListEnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.enrollments[courseID]...), nil
}

// ---- materials ----

func (s *Store) CreateMaterial(ctx context.Context, material *model.Material) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&material.UUIDBase)
	s.materials[material.ID] = *material
	return nil
}

func (s *Store) FindMaterialByID(ctx context.Context, id string) (*model.Material, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (s *Store) SaveMaterial(ctx context.Context, material *model.Material) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.materials[material.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	material.UpdatedAt = time.Now()
	s.materials[material.ID] = *material
	return nil
}

func (s *Store) FindMaterialsByIDs(ctx context.Context, ids []string) ([]model.Material, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Material
	for _, id := range ids {
		if m, ok := s.materials[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ListMaterialsByCourseAndType(ctx context.Context, courseID string, materialType model.MaterialType) ([]model.Material, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Material
	for _, m := range s.materials {
		if m.CourseID == courseID && m.Type == materialType {
			out = append(out, m)
		}
	}
	sortByOrder(out, func(m model.Material) string { return m.ID }, s.order)
	return out, nil
}

// ---- quizzes ----

func (s *Store) CreateQuiz(ctx context.Context, quiz *model.Quiz) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&quiz.UUIDBase)
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *Store) FindQuizByID(ctx context.Context, id string) (*model.Quiz, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (s *Store) FindQuizzesByIDs(ctx context.Context, ids []string) ([]model.Quiz, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Quiz
	for _, id := range ids {
		if q, ok := s.quizzes[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) ListQuizzesByCourse(ctx context.Context, courseID string, archived *bool) ([]model.Quiz, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.CourseID != courseID {
			continue
		}
		if archived != nil && q.IsArchived != *archived {
			continue
		}
		out = append(out, q)
	}
	sortByOrder(out, func(q model.Quiz) string { return q.ID }, s.order)
	return out, nil
}

// ---- submissions ----

func (s *Store) CreateSubmission(ctx context.Context, submission *model.Submission) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.submissions {
		if sub.MaterialID == submission.MaterialID && sub.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.stamp(&submission.UUIDBase)
	s.submissions[submission.ID] = *submission
	return nil
}

func (s *Store) FindActiveSubmission(ctx context.Context, materialID, studentID string) (*model.Submission, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions {
		if sub.MaterialID == materialID && sub.StudentID == studentID && !sub.IsArchived {
			sub := sub
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Store) ListSubmissionsByStudent(ctx context.Context, studentID string, materialIDs []string) ([]model.Submission, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(studentID); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(materialIDs))
	for _, id := range materialIDs {
		wanted[id] = true
	}
	var out []model.Submission
	for _, sub := range s.submissions {
		if sub.StudentID == studentID && wanted[sub.MaterialID] {
			out = append(out, sub)
		}
	}
	sortByOrder(out, func(sub model.Submission) string { return sub.ID }, s.order)
	return out, nil
}

func (s *Store) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Submission
	for _, sub := range s.submissions {
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		if filter.MaterialID != "" && sub.MaterialID != filter.MaterialID {
			continue
		}
		if filter.IsArchived != nil && sub.IsArchived != *filter.IsArchived {
			continue
		}
		out = append(out, sub)
	}
	sortByOrder(out, func(sub model.Submission) string { return sub.ID }, s.order)
	return out, nil
}

// SetSubmissionArchived 仅用于测试和本地数据准备
func (s *Store) SetSubmissionArchived(id string, archived bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.submissions[id]; ok {
		sub.IsArchived = archived
		s.submissions[id] = sub
	}
}

func (s *Store) ApplyGrade(ctx context.Context, submissionID string, grade float64, event *model.GradeEvent) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[submissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g := grade
	sub.Grade = &g
	sub.UpdatedAt = time.Now()
	s.submissions[submissionID] = sub

	for id, e := range s.events {
		if e.StudentID == event.StudentID && e.TaskID == event.TaskID {
			e.Grade = event.Grade
			e.Type = event.Type
			e.UpdatedAt = time.Now()
			s.events[id] = e
			*event = e
			return nil
		}
	}
	s.stamp(&event.UUIDBase)
	s.events[event.ID] = *event
	return nil
}

// ---- grades ----

func (s *Store) GradeEventExists(ctx context.Context, studentID, taskID string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventExistsLocked(studentID, taskID), nil
}

func (s *Store) eventExistsLocked(studentID, taskID string) bool {
	for _, e := range s.events {
		if e.StudentID == studentID && e.TaskID == taskID {
			return true
		}
	}
	return false
}

func (s *Store) ListGradeEventsByStudent(ctx context.Context, studentID string) ([]model.GradeEvent, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(studentID); err != nil {
		return nil, err
	}
	var out []model.GradeEvent
	for _, e := range s.events {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sortByOrder(out, func(e model.GradeEvent) string { return e.ID }, s.order)
	return out, nil
}

// InsertGradeEvent 直接写入成绩事件（不经过评分流程），用于数据准备
func (s *Store) InsertGradeEvent(ctx context.Context, event *model.GradeEvent) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventExistsLocked(event.StudentID, event.TaskID) {
		return gorm.ErrDuplicatedKey
	}
	s.stamp(&event.UUIDBase)
	s.events[event.ID] = *event
	return nil
}

func (s *Store) RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt, event *model.GradeEvent) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventExistsLocked(event.StudentID, event.TaskID) {
		return gorm.ErrDuplicatedKey
	}
	for _, a := range s.attempts {
		if a.StudentID == attempt.StudentID && a.QuizID == attempt.QuizID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.stamp(&event.UUIDBase)
	s.stamp(&attempt.UUIDBase)
	s.events[event.ID] = *event
	s.attempts[attempt.ID] = *attempt
	return nil
}

func (s *Store) ListQuizAttempts(ctx context.Context, studentID string, quizIDs []string) ([]model.QuizAttempt, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(studentID); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(quizIDs))
	for _, id := range quizIDs {
		wanted[id] = true
	}
	var out []model.QuizAttempt
	for _, a := range s.attempts {
		if a.StudentID == studentID && wanted[a.QuizID] {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&comment.UUIDBase)
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Store) ListComments(ctx context.Context, filter model.CommentFilter) ([]model.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Comment
	for _, c := range s.comments {
		if filter.MaterialID != "" && c.MaterialID != filter.MaterialID {
			continue
		}
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.IsArchived != nil && c.IsArchived != *filter.IsArchived {
			continue
		}
		out = append(out, c)
	}
	sortByOrder(out, func(c model.Comment) string { return c.ID }, s.order)
	return out, nil
}
