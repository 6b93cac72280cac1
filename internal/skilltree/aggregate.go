package skilltree

import (
	"math"
	"strings"

	"skilltree_backend/internal/model"
)

// EvaluationResult 加权汇总后的评分结果
type EvaluationResult struct {
	Type        model.EvaluationType    `json:"type"`
	Value       float64                 `json:"value"`
	HasValue    bool                    `json:"hasValue"`
	Letter      string                  `json:"letter,omitempty"`
	Option      *model.EvaluationOption `json:"option,omitempty"`
	Passed      bool                    `json:"passed"`
	Count       int                     `json:"count"`
	Repeat      bool                    `json:"repeat"`
	RepeatCount int                     `json:"repeatCount"`
}

// AverageGrade 计算可评分技能的加权平均成绩。
// 标记为重修的评价不参与平均，只计入 Repeat/RepeatCount，也不影响其他评价；
// 没有任何可评分评价时返回 nil
func AverageGrade(evaluations []model.Evaluation, skills []model.Skill, em *model.EvaluationModel, gradeAllByDefault bool) *EvaluationResult {
	if em == nil {
		return nil
	}
	byID := make(map[string]*model.Skill, len(skills))
	for i := range skills {
		byID[skills[i].ID] = &skills[i]
	}

	var sum, weights float64
	res := &EvaluationResult{Type: em.Type}
	for _, ev := range evaluations {
		skill, ok := byID[ev.SkillID]
		if !ok || !skill.Gradeable(gradeAllByDefault) {
			continue
		}
		if ev.Repeat {
			res.RepeatCount++
			continue
		}
		v, ok := evaluationValue(ev, em)
		if !ok {
			continue
		}
		w := float64(skill.EffectiveWeight())
		sum += v * w
		weights += w
		res.Count++
	}

	if res.Count == 0 && res.RepeatCount == 0 {
		return nil
	}
	res.Repeat = res.RepeatCount > 0
	if res.Count == 0 {
		return res
	}

	res.HasValue = true
	res.Value = sum / weights
	switch em.Type {
	case model.EvaluationLetter:
		if opt := MatchOption(em.Options, res.Value); opt != nil {
			res.Option = opt
			res.Letter = opt.Letter
			res.Passed = opt.ValuePasses
		}
	default:
		res.Passed = res.Value >= em.PassLevel
	}
	return res
}

func evaluationValue(ev model.Evaluation, em *model.EvaluationModel) (float64, bool) {
	switch em.Type {
	case model.EvaluationNumerical:
		if ev.Grade == nil {
			return 0, false
		}
		return *ev.Grade, true
	case model.EvaluationPercentage:
		if ev.Percentage == nil {
			return 0, false
		}
		return *ev.Percentage, true
	case model.EvaluationLetter:
		if opt := FindOption(em.Options, ev.Letter); opt != nil {
			return opt.Value, true
		}
	}
	return 0, false
}

// FindOption 按字母查找评分档位（不区分大小写）
func FindOption(options []model.EvaluationOption, letter string) *model.EvaluationOption {
	for i := range options {
		if strings.EqualFold(options[i].Letter, letter) {
			return &options[i]
		}
	}
	return nil
}

// MatchOption 返回第一个 [minimum, maximum] 区间包含 v 的档位；
// v 落在区间空隙时取最近的档位，距离相同按声明顺序
func MatchOption(options []model.EvaluationOption, v float64) *model.EvaluationOption {
	for i := range options {
		if v >= options[i].Minimum && v <= options[i].Maximum {
			return &options[i]
		}
	}
	best := -1
	bestDist := math.Inf(1)
	for i := range options {
		d := math.Min(math.Abs(v-options[i].Minimum), math.Abs(v-options[i].Maximum))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil
	}
	return &options[best]
}

// SubtreeGrades 对每个节点的子树（自身及全部后代）计算 AverageGrade，
// 没有结果的节点不在返回的 map 中
func SubtreeGrades(forest []*TreeNode, evaluations []model.Evaluation, em *model.EvaluationModel, gradeAllByDefault bool) map[string]*EvaluationResult {
	bySkill := make(map[string][]model.Evaluation)
	for _, ev := range evaluations {
		bySkill[ev.SkillID] = append(bySkill[ev.SkillID], ev)
	}
	out := make(map[string]*EvaluationResult)
	for _, root := range forest {
		rollUp(root, bySkill, em, gradeAllByDefault, out)
	}
	return out
}

func rollUp(node *TreeNode, bySkill map[string][]model.Evaluation, em *model.EvaluationModel, gradeAll bool, out map[string]*EvaluationResult) ([]model.Skill, []model.Evaluation) {
	skills := []model.Skill{node.Record.Skill}
	evals := append([]model.Evaluation(nil), bySkill[node.ID()]...)
	for _, child := range node.Children {
		s, e := rollUp(child, bySkill, em, gradeAll, out)
		skills = append(skills, s...)
		evals = append(evals, e...)
	}
	if res := AverageGrade(evals, skills, em, gradeAll); res != nil {
		out[node.ID()] = res
	}
	return skills, evals
}
