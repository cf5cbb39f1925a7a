package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addEvent(t *testing.T, store *memory.Store, studentID, taskID string, grade float64, typ model.GradeType) {
	t.Helper()
	require.NoError(t, store.InsertGradeEvent(context.Background(), &model.GradeEvent{
		StudentID: studentID,
		TaskID:    taskID,
		Grade:     grade,
		Type:      typ,
	}))
}

func TestBuildReport_QuizAndTask(t *testing.T) {
	store := memory.NewStore()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	course := seedCourse(t, store, instructor.ID)
	quiz := seedQuiz(t, store, course.ID, "Warmup", "2+2", "4")
	essay := seedAssignment(t, store, course.ID, "Essay")

	addEvent(t, store, "s1", quiz.ID, 80, model.GradeQuiz)
	addEvent(t, store, "s1", essay.ID, 60, model.GradeTask)

	svc := NewReportService(store, store, store, nil, testSettings())
	report, err := svc.Build(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 70.0, report.Average)
	assert.Equal(t, 80.0, report.QuizAverage)
	assert.Equal(t, 60.0, report.TaskAverage)
	assert.Equal(t, util.WeaknessTask, report.Weakness)
	assert.Equal(t, "Your task average (60.00) is lower than your quiz average (80.00).", report.WeaknessDetails)
	assert.Equal(t, "You need to improve in the following tasks: Essay", report.PerformanceFeedback)

	require.Len(t, report.Grades, 2)
	assert.Equal(t, ReportEntry{TaskID: quiz.ID, TaskName: "Warmup", Grade: 80, Type: model.GradeQuiz}, report.Grades[0])
	assert.Equal(t, ReportEntry{TaskID: essay.ID, TaskName: "Essay", Grade: 60, Type: model.GradeTask}, report.Grades[1])
}

func TestBuildReport_Weakness(t *testing.T) {
	tests := []struct {
		name     string
		quizzes  []float64
		tasks    []float64
		weakness string
		feedback string
	}{
		{name: "quiz weaker", quizzes: []float64{50}, tasks: []float64{90}, weakness: util.WeaknessQuiz, feedback: "You need to improve in the following quizzes: q0"},
		{name: "equal", quizzes: []float64{80}, tasks: []float64{80}, weakness: util.WeaknessNone, feedback: util.PerformingWell},
		{name: "only quizzes", quizzes: []float64{90, 75}, weakness: util.WeaknessNone, feedback: util.PerformingWell},
		{name: "only tasks", tasks: []float64{40}, weakness: util.WeaknessNone, feedback: "You need to improve in the following tasks: t0"},
		{name: "quiz low performers win", quizzes: []float64{65, 95, 10}, tasks: []float64{20}, weakness: util.WeaknessTask, feedback: "You need to improve in the following quizzes: q0, q2"},
		{name: "threshold is exclusive", quizzes: []float64{70}, tasks: []float64{70}, weakness: util.WeaknessNone, feedback: util.PerformingWell},
		{name: "equal after rounding", quizzes: []float64{100, 100, 0}, tasks: []float64{66.67}, weakness: util.WeaknessNone, feedback: "You need to improve in the following quizzes: q2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			for i, g := range tt.quizzes {
				q := &model.Quiz{Name: "q" + string(rune('0'+i))}
				require.NoError(t, store.CreateQuiz(context.Background(), q))
				addEvent(t, store, "s1", q.ID, g, model.GradeQuiz)
			}
			for i, g := range tt.tasks {
				m := &model.Material{Name: "t" + string(rune('0'+i)), Type: model.MaterialAssignment}
				require.NoError(t, store.CreateMaterial(context.Background(), m))
				addEvent(t, store, "s1", m.ID, g, model.GradeTask)
			}

			svc := NewReportService(store, store, store, nil, testSettings())
			report, err := svc.Build(context.Background(), "s1")
			require.NoError(t, err)
			assert.Equal(t, tt.weakness, report.Weakness)
			assert.Equal(t, tt.feedback, report.PerformanceFeedback)
			if tt.weakness == util.WeaknessNone {
				assert.Empty(t, report.WeaknessDetails)
			}
		})
	}
}

func TestBuildReport_AverageIndependentOfOrder(t *testing.T) {
	grades := []float64{12.5, 99, 47.25, 100, 0}
	build := func(order []int) float64 {
		store := memory.NewStore()
		for _, i := range order {
			addEvent(t, store, "s1", "task-"+string(rune('a'+i)), grades[i], model.GradeTask)
		}
		report, err := NewReportService(store, store, store, nil, testSettings()).Build(context.Background(), "s1")
		require.NoError(t, err)
		return report.Average
	}

	assert.Equal(t, build([]int{0, 1, 2, 3, 4}), build([]int{4, 2, 0, 3, 1}))
	assert.Equal(t, 51.75, build([]int{0, 1, 2, 3, 4}))
}

func TestBuildReport_UnknownTaskAndEmpty(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, store, store, nil, testSettings())

	_, err := svc.Build(context.Background(), "s1")
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.Equal(t, "no grades found", err.Error())

	addEvent(t, store, "s1", "deleted-quiz", 90, model.GradeQuiz)
	report, err := svc.Build(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, util.UnknownTask, report.Grades[0].TaskName)
}

func TestBuildReport_ThresholdFollowsSettings(t *testing.T) {
	store := memory.NewStore()
	addEvent(t, store, "s1", "t1", 75, model.GradeTask)
	settings := testSettings()
	svc := NewReportService(store, store, store, nil, settings)

	report, err := svc.Build(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, util.PerformingWell, report.PerformanceFeedback)

	cfg := settings.Get()
	cfg.LowGradeThreshold = 80
	settings.Update(cfg)

	report, err = svc.Build(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "You need to improve in the following tasks: Unknown Task", report.PerformanceFeedback)
}

func TestBuildReport_Cache(t *testing.T) {
	store := memory.NewStore()
	cache := newFakeCache()
	addEvent(t, store, "s1", "t1", 40, model.GradeTask)
	svc := NewReportService(store, store, store, cache, testSettings())
	ctx := context.Background()

	first, err := svc.Build(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cache.cached("s1"))

	// 缓存命中时不会看到新写入的事件
	addEvent(t, store, "s1", "t2", 100, model.GradeTask)
	second, err := svc.Build(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.Average, second.Average)

	require.NoError(t, cache.Invalidate(ctx, "s1"))
	third, err := svc.Build(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, third.Average)
}

// gradeDuringList 在读取成绩事件返回后、报告写入缓存前插入一次评分
type gradeDuringList struct {
	GradeStore
	once  sync.Once
	grade func()
}

func (g *gradeDuringList) ListGradeEventsByStudent(ctx context.Context, studentID string) ([]model.GradeEvent, error) {
	events, err := g.GradeStore.ListGradeEventsByStudent(ctx, studentID)
	g.once.Do(g.grade)
	return events, err
}

func TestBuildReport_GradeDuringBuildIsNotHiddenByCache(t *testing.T) {
	store := memory.NewStore()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "stu", "Sam", "Lee", model.Student)
	course := seedCourse(t, store, instructor.ID)
	quiz := seedQuiz(t, store, course.ID, "Warmup", "2+2", "4")
	essay := seedAssignment(t, store, course.ID, "Essay")
	seedSubmission(t, store, essay.ID, student)
	addEvent(t, store, student.ID, quiz.ID, 80, model.GradeQuiz)

	ctx := context.Background()
	cache := newFakeCache()
	submissions := NewSubmissionService(store, store, store, cache)
	grades := &gradeDuringList{GradeStore: store, grade: func() {
		_, err := submissions.Grade(ctx, essay.ID, student.ID, 40)
		require.NoError(t, err)
	}}
	svc := NewReportService(grades, store, store, cache, testSettings())

	first, err := svc.Build(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, first.Grades, 1)

	second, err := svc.Build(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, second.Grades, 2)
	assert.Equal(t, 40.0, second.TaskAverage)
	assert.Equal(t, 60.0, second.Average)
	assert.True(t, cache.cached(student.ID))
}
