package skilltree

import "skilltree_backend/internal/model"

// CompletionMap 单个用户在单棵技能树上的技能状态，按技能 ID 索引
type CompletionMap map[string]model.SkillStatus

// CountSelected 统计所有 map 中 selected 的数量
func CountSelected(maps []CompletionMap) int {
	total := 0
	for _, m := range maps {
		for _, status := range m {
			if status == model.SkillSelected {
				total++
			}
		}
	}
	return total
}

// NewCompletionMaps 按技能树分组已保存的完成状态
func NewCompletionMaps(completions []model.SkillCompletion) map[string]CompletionMap {
	out := make(map[string]CompletionMap)
	for _, c := range completions {
		m, ok := out[c.SkilltreeID]
		if !ok {
			m = CompletionMap{}
			out[c.SkilltreeID] = m
		}
		m[c.SkillID] = c.Status
	}
	return out
}

// Status 返回技能状态，未记录的技能视为 locked
func (m CompletionMap) Status(skillID string) model.SkillStatus {
	if s, ok := m[skillID]; ok {
		return s
	}
	return model.SkillLocked
}
