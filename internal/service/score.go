package service

import (
	"classroom_backend/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// round2 四舍五入到两位小数（远离零方向，非截断）
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// formatGrade 固定两位小数的展示格式，如 "85.00"
func formatGrade(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// mean2 平均值，保留两位小数；空集合返回 0
func mean2(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}

// scoreAnswers 逐题精确比较（区分大小写），缺失的答案按空字符串处理。
// 调用方保证题目数量大于 0。
func scoreAnswers(questions []model.QuizQuestion, answers []string) ([]model.AnswerResult, int, float64) {
	results := make([]model.AnswerResult, len(questions))
	correct := 0
	for i, q := range questions {
		given := ""
		if i < len(answers) {
			given = answers[i]
		}
		ok := given == q.Answer
		if ok {
			correct++
		}
		results[i] = model.AnswerResult{
			Question:      q.Question,
			UserAnswer:    given,
			CorrectAnswer: q.Answer,
			Correct:       ok,
		}
	}

	pct := decimal.NewFromInt(int64(correct)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(len(questions)))).
		Round(2).
		InexactFloat64()
	return results, correct, pct
}
