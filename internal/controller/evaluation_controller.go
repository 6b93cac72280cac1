package controller

import (
	"strconv"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// ListModels godoc
// @Summary 评分模型列表
// @Description 返回系统默认模型和当前用户创建的模型
// @Tags 评分
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.EvaluationModel}
// @Router /api/evaluation-models [get]
func (c *EvaluationController) ListModels(ctx *gin.Context) {
	list, err := c.EvaluationService.ListModels(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// CreateModel godoc
// @Summary 新建评分模型
// @Tags 评分
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.EvaluationModelRequest true "模型"
// @Success 201 {object} util.Response{data=model.EvaluationModel}
// @Router /api/evaluation-models [post]
func (c *EvaluationController) CreateModel(ctx *gin.Context) {
	var req service.EvaluationModelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	m, err := c.EvaluationService.CreateModel(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// RecordEvaluation godoc
// @Summary 评分
// @Tags 评分
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.EvaluationRequest true "评分"
// @Success 201 {object} util.Response{data=model.Evaluation}
// @Router /api/evaluations [post]
func (c *EvaluationController) RecordEvaluation(ctx *gin.Context) {
	var req service.EvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	ev, err := c.EvaluationService.RecordEvaluation(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, ev)
}

// GetGrades godoc
// @Summary 评分汇总
// @Description 学生只能查看自己的汇总，教师可通过 studentId 查看任意学生
// @Tags 评分
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Param studentId query int false "学生ID"
// @Success 200 {object} util.Response{data=service.GradeReport}
// @Router /api/compositions/{id}/grades [get]
func (c *EvaluationController) GetGrades(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	studentID := claims.UserID
	if s := ctx.Query("studentId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			util.BadRequest(ctx, "invalid studentId")
			return
		}
		if uint(id) != claims.UserID && claims.Role == model.Student {
			util.Forbidden(ctx)
			return
		}
		studentID = uint(id)
	}

	report, err := c.EvaluationService.StudentGrades(ctx.Request.Context(), studentID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
