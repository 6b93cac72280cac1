package util

import (
	"skilltree_backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("gradeskill", validGradeSkill)
}

func validGradeSkill(fl validator.FieldLevel) bool {
	switch model.GradeSkill(fl.Field().String()) {
	case model.GradeSkillDefault, model.GradeSkillGraded, model.GradeSkillNotGraded:
		return true
	}
	return false
}
