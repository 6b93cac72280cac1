// Package servicetest 提供服务层测试使用的内存存储
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"

	"gorm.io/gorm"
)

// DB 是内存版存储，同时实现 OrderStore 和 PathStore
type DB struct {
	mu         sync.Mutex
	seq        int64
	createdSeq map[string]int64

	CompositionRows map[string]model.Composition
	SkilltreeRows   map[string]model.Skilltree
	SkillRows       map[string]model.Skill
	CompletionRows  []model.SkillCompletion
	EvaluationRows  []model.Evaluation
	ModelRows       map[string]model.EvaluationModel

	// Deleted 按删除顺序记录路径；FailOn 中的路径在 DeleteByPath 时返回对应错误
	Deleted []string
	FailOn  map[string]error
}

func NewDB() *DB {
	return &DB{
		createdSeq:      map[string]int64{},
		CompositionRows: map[string]model.Composition{},
		SkilltreeRows:   map[string]model.Skilltree{},
		SkillRows:       map[string]model.Skill{},
		ModelRows:       map[string]model.EvaluationModel{},
		FailOn:          map[string]error{},
	}
}

func (db *DB) touch(id string) {
	db.seq++
	db.createdSeq[id] = db.seq
}

func isCompositionPath(path string) bool {
	return strings.HasPrefix(path, model.CollectionCompositions+"/") &&
		strings.Count(strings.Trim(path, "/"), "/") == 1
}

func (db *DB) siblings(parentPath string) []skilltree.Sibling {
	var out []skilltree.Sibling
	if isCompositionPath(parentPath) {
		compID := strings.TrimPrefix(parentPath, model.CollectionCompositions+"/")
		for _, t := range db.SkilltreeRows {
			if t.CompositionID == compID {
				out = append(out, skilltree.Sibling{ID: t.ID, Path: t.Path(), Order: t.Order, CreatedAt: db.createdSeq[t.ID]})
			}
		}
	} else {
		for _, s := range db.SkillRows {
			if s.ParentPath == parentPath {
				out = append(out, skilltree.Sibling{ID: s.ID, Path: s.Path, Order: s.Order, CreatedAt: db.createdSeq[s.ID]})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

func (db *DB) ListSiblings(ctx context.Context, parentPath string) ([]skilltree.Sibling, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.siblings(parentPath), nil
}

func (db *DB) CountSiblings(ctx context.Context, parentPath string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.siblings(parentPath)), nil
}

func (db *DB) currentOrder(path string) (int, bool) {
	if s, ok := db.SkillRows[path]; ok {
		return s.Order, true
	}
	for _, t := range db.SkilltreeRows {
		if t.Path() == path {
			return t.Order, true
		}
	}
	return 0, false
}

func (db *DB) setOrder(path string, order int) {
	if s, ok := db.SkillRows[path]; ok {
		s.Order = order
		db.SkillRows[path] = s
		return
	}
	for id, t := range db.SkilltreeRows {
		if t.Path() == path {
			t.Order = order
			db.SkilltreeRows[id] = t
		}
	}
}

func (db *DB) SwapOrder(ctx context.Context, parentPath string, a, b skilltree.Sibling) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, s := range []skilltree.Sibling{a, b} {
		if cur, ok := db.currentOrder(s.Path); !ok || cur != s.Order {
			return fmt.Errorf("%w: %s", skilltree.ErrOrderConflict, s.Path)
		}
	}
	db.setOrder(a.Path, b.Order)
	db.setOrder(b.Path, a.Order)
	return nil
}

func (db *DB) ApplyOrderChanges(ctx context.Context, parentPath string, changes []skilltree.OrderChange) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, c := range changes {
		if cur, ok := db.currentOrder(c.Path); !ok || cur != c.OldOrder {
			return fmt.Errorf("%w: %s", skilltree.ErrOrderConflict, c.Path)
		}
	}
	for _, c := range changes {
		db.setOrder(c.Path, c.NewOrder)
	}
	return nil
}

func (db *DB) ListChildPaths(ctx context.Context, path string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []string
	for _, s := range db.siblings(path) {
		out = append(out, s.Path)
	}
	return out, nil
}

func (db *DB) DeleteByPath(ctx context.Context, path string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err, ok := db.FailOn[path]; ok {
		return err
	}
	if _, ok := db.SkillRows[path]; ok {
		delete(db.SkillRows, path)
		db.Deleted = append(db.Deleted, path)
		return nil
	}
	for id, t := range db.SkilltreeRows {
		if t.Path() == path {
			delete(db.SkilltreeRows, id)
			db.Deleted = append(db.Deleted, path)
			return nil
		}
	}
	for id, c := range db.CompositionRows {
		if c.Path() == path {
			delete(db.CompositionRows, id)
			db.Deleted = append(db.Deleted, path)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", skilltree.ErrNotFound, path)
}

type Skills struct{ *DB }

func (m Skills) Create(ctx context.Context, skill *model.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(skill.ID)
	m.SkillRows[skill.Path] = *skill
	return nil
}

func (m Skills) CreateBatch(ctx context.Context, skills []model.Skill) error {
	for i := range skills {
		if err := m.Create(ctx, &skills[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m Skills) FindByPath(ctx context.Context, path string) (*model.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.SkillRows[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", skilltree.ErrNotFound, path)
	}
	return &s, nil
}

func (m Skills) ListChildren(ctx context.Context, parentPath string) ([]model.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Skill
	for _, s := range m.SkillRows {
		if s.ParentPath == parentPath {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m Skills) list(keep func(model.Skill) bool) []model.Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Skill
	for _, s := range m.SkillRows {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (m Skills) ListBySkilltree(ctx context.Context, skilltreeID string) ([]model.Skill, error) {
	return m.list(func(s model.Skill) bool { return s.SkilltreeID == skilltreeID }), nil
}

func (m Skills) ListByComposition(ctx context.Context, compositionID string) ([]model.Skill, error) {
	return m.list(func(s model.Skill) bool { return s.CompositionID == compositionID }), nil
}

func (m Skills) Update(ctx context.Context, skill *model.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.SkillRows[skill.Path]; !ok {
		return fmt.Errorf("%w: %s", skilltree.ErrNotFound, skill.Path)
	}
	m.SkillRows[skill.Path] = *skill
	return nil
}

type Skilltrees struct{ *DB }

func (m Skilltrees) Create(ctx context.Context, t *model.Skilltree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(t.ID)
	m.SkilltreeRows[t.ID] = *t
	return nil
}

func (m Skilltrees) FindByID(ctx context.Context, id string) (*model.Skilltree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.SkilltreeRows[id]
	if !ok {
		return nil, fmt.Errorf("%w: skilltree %s", skilltree.ErrNotFound, id)
	}
	return &t, nil
}

func (m Skilltrees) ListByComposition(ctx context.Context, compositionID string) ([]model.Skilltree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Skilltree
	for _, t := range m.SkilltreeRows {
		if t.CompositionID == compositionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m Skilltrees) Update(ctx context.Context, t *model.Skilltree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkilltreeRows[t.ID] = *t
	return nil
}

type Compositions struct{ *DB }

func (m Compositions) Create(ctx context.Context, c *model.Composition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompositionRows[c.ID] = *c
	return nil
}

func (m Compositions) FindByID(ctx context.Context, id string) (*model.Composition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.CompositionRows[id]
	if !ok {
		return nil, fmt.Errorf("%w: composition %s", skilltree.ErrNotFound, id)
	}
	return &c, nil
}

func (m Compositions) ListVisible(ctx context.Context, userID uint) ([]model.Composition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Composition
	for _, c := range m.CompositionRows {
		if c.OwnerID == userID || c.SharedPublic {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m Compositions) Update(ctx context.Context, c *model.Composition) error {
	return m.Create(ctx, c)
}

type Completions struct{ *DB }

func (m Completions) Upsert(ctx context.Context, c *model.SkillCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.CompletionRows {
		if existing.UserID == c.UserID && existing.SkillID == c.SkillID {
			m.CompletionRows[i] = *c
			return nil
		}
	}
	m.CompletionRows = append(m.CompletionRows, *c)
	return nil
}

func (m Completions) ListByUserAndComposition(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SkillCompletion
	for _, c := range m.CompletionRows {
		if c.UserID == userID && c.CompositionID == compositionID {
			out = append(out, c)
		}
	}
	return out, nil
}

type Evaluations struct{ *DB }

func (m Evaluations) Create(ctx context.Context, e *model.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvaluationRows = append(m.EvaluationRows, *e)
	return nil
}

func (m Evaluations) ListLatestByStudent(ctx context.Context, studentID uint, compositionID string) ([]model.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[string]model.Evaluation{}
	var order []string
	for _, e := range m.EvaluationRows {
		if e.StudentID != studentID || e.CompositionID != compositionID {
			continue
		}
		if _, seen := latest[e.SkillID]; !seen {
			order = append(order, e.SkillID)
		}
		latest[e.SkillID] = e
	}
	out := make([]model.Evaluation, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func (m Evaluations) CreateModel(ctx context.Context, em *model.EvaluationModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelRows[em.ID] = *em
	return nil
}

func (m Evaluations) FindModelByID(ctx context.Context, id string) (*model.EvaluationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	em, ok := m.ModelRows[id]
	if !ok {
		return nil, fmt.Errorf("%w: evaluation model %s", skilltree.ErrNotFound, id)
	}
	return &em, nil
}

func (m Evaluations) ListModels(ctx context.Context, ownerID uint) ([]model.EvaluationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EvaluationModel
	for _, em := range m.ModelRows {
		if em.OwnerID == ownerID || em.OwnerID == 0 {
			out = append(out, em)
		}
	}
	return out, nil
}

// Cache 内存版完成状态缓存，发布的变更同步分发给订阅者
type Cache struct {
	mu       sync.Mutex
	entries  map[string][]model.SkillCompletion
	Gets     int
	Hits     int
	// Unsubscribes 取消函数被调用的次数
	Unsubscribes int
	handlers     map[string]map[int]func(model.SkillCompletion)
	nextSub  int
}

func NewCache() *Cache {
	return &Cache{
		entries:  map[string][]model.SkillCompletion{},
		handlers: map[string]map[int]func(model.SkillCompletion){},
	}
}

func cacheKey(userID uint, compositionID string) string {
	return fmt.Sprintf("%d:%s", userID, compositionID)
}

func (c *Cache) Get(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	cs, ok := c.entries[cacheKey(userID, compositionID)]
	if ok {
		c.Hits++
	}
	return cs, ok, nil
}

func (c *Cache) Set(ctx context.Context, userID uint, compositionID string, cs []model.SkillCompletion) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(userID, compositionID)] = cs
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, userID uint, compositionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(userID, compositionID))
	return nil
}

func (c *Cache) Publish(ctx context.Context, change model.SkillCompletion) error {
	c.mu.Lock()
	var hs []func(model.SkillCompletion)
	for _, h := range c.handlers[change.CompositionID] {
		hs = append(hs, h)
	}
	c.mu.Unlock()
	for _, h := range hs {
		h(change)
	}
	return nil
}

func (c *Cache) Subscribe(ctx context.Context, compositionID string, handler func(model.SkillCompletion)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers[compositionID] == nil {
		c.handlers[compositionID] = map[int]func(model.SkillCompletion){}
	}
	id := c.nextSub
	c.nextSub++
	c.handlers[compositionID][id] = handler
	return func() {
		c.mu.Lock()
		delete(c.handlers[compositionID], id)
		c.Unsubscribes++
		c.mu.Unlock()
	}, nil
}

// Subscribers 返回组合当前的订阅数
func (c *Cache) Subscribers(compositionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[compositionID])
}

func (c *Cache) UnsubscribeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Unsubscribes
}


type Users struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]model.User
}

func NewUsers() *Users {
	return &Users{rows: map[uint]model.User{}}
}

func (u *Users) Create(user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.rows {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	u.nextID++
	user.ID = u.nextID
	u.rows[user.ID] = *user
	return nil
}

func (u *Users) FindByID(id uint) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (u *Users) FindByEmail(email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.rows {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *Users) UpdateLastLogin(userID uint) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.LastLogin = time.Now()
	u.rows[userID] = user
	return nil
}

// PutComposition 直接写入一个组合
func (db *DB) PutComposition(id string) *model.Composition {
	c := model.Composition{UUIDBase: model.UUIDBase{ID: id}, Title: id, GradeAllByDefault: true}
	_ = Compositions{db}.Create(context.Background(), &c)
	return &c
}

func (db *DB) PutSkilltree(compositionID, id string, order int) string {
	t := model.Skilltree{UUIDBase: model.UUIDBase{ID: id}, CompositionID: compositionID, Title: id, Order: order}
	_ = Skilltrees{db}.Create(context.Background(), &t)
	return t.Path()
}

// PutSkill 在 parentPath 下直接写入一条技能记录，返回其路径
func (db *DB) PutSkill(parentPath, id string, order int) string {
	loc, err := skilltree.ParseLocation(parentPath)
	if err != nil {
		panic(err)
	}
	depth := 0
	if loc.IsSkill() {
		depth = loc.Depth + 1
	}
	s := model.Skill{
		UUIDBase:      model.UUIDBase{ID: id},
		Path:          loc.ChildPath(id),
		ParentPath:    loc.Path,
		CompositionID: loc.CompositionID,
		SkilltreeID:   loc.SkilltreeID,
		Depth:         depth,
		Title:         id,
		Order:         order,
		Weight:        model.DefaultSkillWeight,
		GradeSkill:    model.GradeSkillDefault,
	}
	_ = Skills{db}.Create(context.Background(), &s)
	return s.Path
}

// SampleTree 写入组合 c1、技能树 t1 以及 root -> [child1 -> [grandchild1], child2]，返回技能树路径
func (db *DB) SampleTree() string {
	db.PutComposition("c1")
	tree := db.PutSkilltree("c1", "t1", 0)
	root := db.PutSkill(tree, "root", 0)
	child1 := db.PutSkill(root, "child1", 0)
	db.PutSkill(root, "child2", 1)
	db.PutSkill(child1, "grandchild1", 0)
	return tree
}
