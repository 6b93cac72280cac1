package service

import (
	"fmt"
	"os"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"

	"gopkg.in/yaml.v3"
)

// SeedSkill YAML 中描述的一个技能及其子技能
type SeedSkill struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Optional    bool             `yaml:"optional"`
	Weight      int              `yaml:"weight"`
	GradeSkill  model.GradeSkill `yaml:"gradeSkill"`
	Links       []model.Link     `yaml:"links"`
	Children    []SeedSkill      `yaml:"children"`
}

type SeedFile struct {
	Skills []SeedSkill `yaml:"skills"`
}

// DefaultSeed 内置示例：一个根技能带两个子技能
func DefaultSeed() []SeedSkill {
	return []SeedSkill{{
		Title:       "Example skill",
		Description: "This is an example skill. Edit or delete it to start building your tree.",
		Children: []SeedSkill{
			{Title: "Example child skill 1"},
			{Title: "Example child skill 2"},
		},
	}}
}

func ParseSeed(data []byte) ([]SeedSkill, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := validateSeed(f.Skills); err != nil {
		return nil, err
	}
	return f.Skills, nil
}

// LoadSeed 读取 YAML 示例文件，路径为空时返回内置示例
func LoadSeed(path string) ([]SeedSkill, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

func validateSeed(skills []SeedSkill) error {
	for _, s := range skills {
		if s.Title == "" {
			return fmt.Errorf("%w: seed skill without title", skilltree.ErrIncompleteInput)
		}
		if s.Weight != 0 && (s.Weight < model.MinSkillWeight || s.Weight > model.MaxSkillWeight) {
			return fmt.Errorf("%w: weight %d of %q out of range", skilltree.ErrIncompleteInput, s.Weight, s.Title)
		}
		if err := validateSeed(s.Children); err != nil {
			return err
		}
	}
	return nil
}

// SeedForest 把示例技能转换成树节点，每个节点分配新的 ID，order 为其在兄弟中的位置
func SeedForest(skills []SeedSkill) []*skilltree.TreeNode {
	nodes := make([]*skilltree.TreeNode, 0, len(skills))
	for i, s := range skills {
		node := &skilltree.TreeNode{
			Record: skilltree.Record{Skill: model.Skill{
				UUIDBase:    model.UUIDBase{ID: model.GenerateUUID()},
				Title:       s.Title,
				Description: s.Description,
				Optional:    s.Optional,
				Weight:      s.Weight,
				GradeSkill:  s.GradeSkill,
				Links:       s.Links,
				Order:       i,
			}},
			Children: SeedForest(s.Children),
		}
		nodes = append(nodes, node)
	}
	return nodes
}
