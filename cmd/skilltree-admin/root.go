package main

import (
	"fmt"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/repository"
	"skilltree_backend/internal/service"
	"skilltree_backend/pkg/database"
	"skilltree_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "skilltree-admin",
	Short:         "Maintenance commands for the skilltree backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "Directory containing config.yaml")
}

// env 命令共用的依赖
type env struct {
	cfg          *config.Config
	orders       *service.OrderManager
	deleter      *service.DeletionService
	skills       *service.SkillService
	compositions *service.CompositionService
}

func newEnv(seed []service.SeedSkill) (*env, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	hierarchy := repository.NewHierarchyRepository(db)
	skilltrees := repository.NewSkilltreeRepository(db)

	e := &env{cfg: cfg}
	e.orders = service.NewOrderManager(hierarchy)
	e.deleter = service.NewDeletionService(hierarchy)
	e.skills = service.NewSkillService(repository.NewSkillRepository(db), skilltrees, e.orders, e.deleter, cfg.Skilltree)
	e.compositions = service.NewCompositionService(repository.NewCompositionRepository(db), skilltrees, e.skills, e.orders, e.deleter, seed)
	return e, nil
}
