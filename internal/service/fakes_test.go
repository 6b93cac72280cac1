package service

import (
	"skilltree_backend/internal/config"
	"skilltree_backend/internal/service/servicetest"
)

// fixture 组装一套基于内存存储的服务
type fixture struct {
	db           *servicetest.DB
	orders       *OrderManager
	deleter      *DeletionService
	skills       *SkillService
	compositions *CompositionService
}

func newFixture(cfg config.SkilltreeConfig) *fixture {
	db := servicetest.NewDB()
	orders := NewOrderManager(db)
	deleter := NewDeletionService(db)
	skills := NewSkillService(servicetest.Skills{DB: db}, servicetest.Skilltrees{DB: db}, orders, deleter, cfg)
	comps := NewCompositionService(servicetest.Compositions{DB: db}, servicetest.Skilltrees{DB: db}, skills, orders, deleter, nil)
	return &fixture{db: db, orders: orders, deleter: deleter, skills: skills, compositions: comps}
}

func (f *fixture) addSkill(parentPath, id string, order int) string {
	return f.db.PutSkill(parentPath, id, order)
}

func (f *fixture) addComposition(id string) {
	f.db.PutComposition(id)
}

func (f *fixture) addSkilltree(compositionID, id string, order int) string {
	return f.db.PutSkilltree(compositionID, id, order)
}

func (f *fixture) sampleTree() string {
	return f.db.SampleTree()
}
