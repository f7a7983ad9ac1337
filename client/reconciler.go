package client

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

type MutationKind string

const (
	KindCreate MutationKind = "create"
	KindUpdate MutationKind = "update"
	KindToggle MutationKind = "toggle_complete"
	KindDelete MutationKind = "delete"
)

type MutationState string

const (
	MutationPending   MutationState = "pending"
	MutationConfirmed MutationState = "confirmed"
	MutationFailed    MutationState = "failed"
)

// Notice 在乐观变更被回滚后交给 UI 展示, 说明刚才在尝试什么。
type Notice struct {
	Action MutationKind
	TaskID string
	Err    error
}

// Mutation 一次已应用到本地视图、尚待服务端确认的变更。
type Mutation struct {
	r       *Reconciler
	kind    MutationKind
	id      string
	seq     uint64
	state   MutationState
	undo    *model.Task // nil 表示提交前本地不存在该任务
	undoPos int         // delete 回滚时恢复的列表位置
}

func (m *Mutation) Kind() MutationKind { return m.kind }

func (m *Mutation) TaskID() string {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	return m.id
}

func (m *Mutation) State() MutationState {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	return m.state
}

// Reconciler 维护任务列表的本地乐观视图。变更先落本地、后发请求;
// 服务端响应按提交顺序裁决: 迟到的旧响应不得覆盖更新的乐观状态。
// 所有状态变迁都在一把锁下串行, 等价于单线程 UI 事件循环。
type Reconciler struct {
	mu      sync.Mutex
	view    map[string]*model.Task
	order   []string
	lastSeq map[string]uint64 // task id -> 最近一次提交的序号
	seqGen  uint64
	notify  func(Notice)
}

// NewReconciler 构造空视图。notify 可为 nil, 回滚时不另行通知。
func NewReconciler(notify func(Notice)) *Reconciler {
	return &Reconciler{
		view:    make(map[string]*model.Task),
		lastSeq: make(map[string]uint64),
		notify:  notify,
	}
}

// Load 用服务端权威列表替换本地视图, 丢弃所有挂起的乐观状态。
// 已在途的 Mutation 句柄随之失效: 其后续 Confirm/Fail 不再触碰视图。
func (r *Reconciler) Load(tasks []*model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = make(map[string]*model.Task, len(tasks))
	r.order = r.order[:0]
	r.lastSeq = make(map[string]uint64)
	for _, t := range tasks {
		if t == nil || t.ID == "" {
			continue
		}
		if _, dup := r.view[t.ID]; dup {
			continue
		}
		r.view[t.ID] = t.Clone()
		r.order = append(r.order, t.ID)
	}
}

// Snapshot 返回当前本地视图的深拷贝, 顺序为插入顺序。
func (r *Reconciler) Snapshot() []*model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.view[id].Clone())
	}
	return out
}

// Task 取单个任务的拷贝。
func (r *Reconciler) Task(id string) (*model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.view[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// SubmitCreate 立即把新任务放进本地视图并返回挂起变更。
// ID 为空时生成临时 UUID, 服务端确认后以权威 ID 换名。
func (r *Reconciler) SubmitCreate(t *model.Task) *Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	local := t.Clone()
	if local.ID == "" {
		local.ID = uuid.NewString()
	}
	m := r.newMutationLocked(KindCreate, local.ID, nil, 0)
	r.setLocked(local)
	return m
}

// SubmitUpdate 用期望的新状态覆盖本地视图 (ID 不变)。
func (r *Reconciler) SubmitUpdate(updated *model.Task) (*Mutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.view[updated.ID]
	if !ok {
		return nil, fmt.Errorf("task %s not in local view", updated.ID)
	}
	m := r.newMutationLocked(KindUpdate, updated.ID, cur.Clone(), 0)
	r.setLocked(updated.Clone())
	return m, nil
}

// SubmitToggle 本地翻转完成标记。
func (r *Reconciler) SubmitToggle(id string) (*Mutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.view[id]
	if !ok {
		return nil, fmt.Errorf("task %s not in local view", id)
	}
	m := r.newMutationLocked(KindToggle, id, cur.Clone(), 0)
	next := cur.Clone()
	next.Completed = !next.Completed
	r.setLocked(next)
	return m, nil
}

// SubmitDelete 先从本地视图移除, 回滚时按原位置恢复。
func (r *Reconciler) SubmitDelete(id string) (*Mutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.view[id]
	if !ok {
		return nil, fmt.Errorf("task %s not in local view", id)
	}
	pos := r.removeLocked(id)
	m := r.newMutationLocked(KindDelete, id, cur.Clone(), pos)
	return m, nil
}

// Confirm 以服务端返回的权威表示结算一次挂起变更。
// 若该变更已被同一任务更新的提交取代, 迟到的确认不得回退更新的乐观状态。
func (r *Reconciler) Confirm(m *Mutation, server *model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == nil || m.state != MutationPending {
		return
	}
	m.state = MutationConfirmed
	if r.lastSeq[m.id] != m.seq {
		return // superseded
	}
	switch m.kind {
	case KindDelete:
		delete(r.lastSeq, m.id)
	case KindCreate:
		if server == nil {
			return
		}
		if server.ID != m.id {
			r.adoptServerIDLocked(m, server.ID)
		}
		r.setLocked(server.Clone())
	default:
		if server == nil {
			return
		}
		r.setLocked(server.Clone())
	}
}

// Fail 结算一次失败的变更: 未被取代时整体回滚到提交前快照并通知;
// 已被取代时回滚取消, 更新的乐观状态保持不动。
func (r *Reconciler) Fail(m *Mutation, err error) {
	r.mu.Lock()
	if m == nil || m.state != MutationPending {
		r.mu.Unlock()
		return
	}
	m.state = MutationFailed
	superseded := r.lastSeq[m.id] != m.seq
	var notice *Notice
	if !superseded {
		if m.undo == nil {
			r.removeLocked(m.id)
			delete(r.lastSeq, m.id)
		} else {
			r.restoreLocked(m.undo.Clone(), m.undoPos)
		}
		notice = &Notice{Action: m.kind, TaskID: m.id, Err: err}
	}
	notifyFn := r.notify
	r.mu.Unlock()

	if notice != nil && notifyFn != nil {
		notifyFn(*notice)
	}
}

// Run 驱动一次网络往返: call 成功则 Confirm, 失败则 Fail 并透传错误。
func (r *Reconciler) Run(m *Mutation, call func() (*model.Task, error)) (*model.Task, error) {
	server, err := call()
	if err != nil {
		r.Fail(m, err)
		return nil, err
	}
	r.Confirm(m, server)
	return server, nil
}

func (r *Reconciler) newMutationLocked(kind MutationKind, id string, undo *model.Task, undoPos int) *Mutation {
	r.seqGen++
	m := &Mutation{r: r, kind: kind, id: id, seq: r.seqGen, state: MutationPending, undo: undo, undoPos: undoPos}
	r.lastSeq[id] = m.seq
	return m
}

// setLocked 写入或覆盖视图条目, 新 ID 追加到列表末尾。
func (r *Reconciler) setLocked(t *model.Task) {
	if _, ok := r.view[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.view[t.ID] = t
}

// removeLocked 移除条目并返回其原位置, 不存在返回 -1。
func (r *Reconciler) removeLocked(id string) int {
	if _, ok := r.view[id]; !ok {
		return -1
	}
	delete(r.view, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return i
		}
	}
	return -1
}

// restoreLocked 把回滚快照放回视图, 删除回滚时尽量恢复原位置。
func (r *Reconciler) restoreLocked(t *model.Task, pos int) {
	if _, ok := r.view[t.ID]; ok {
		r.view[t.ID] = t
		return
	}
	r.view[t.ID] = t
	if pos < 0 || pos >= len(r.order) {
		r.order = append(r.order, t.ID)
		return
	}
	r.order = append(r.order, "")
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = t.ID
}

// adoptServerIDLocked 把临时创建 ID 换成服务端分配的权威 ID。
func (r *Reconciler) adoptServerIDLocked(m *Mutation, serverID string) {
	old := m.id
	if t, ok := r.view[old]; ok {
		delete(r.view, old)
		t.ID = serverID
		r.view[serverID] = t
	}
	for i, cur := range r.order {
		if cur == old {
			r.order[i] = serverID
			break
		}
	}
	r.lastSeq[serverID] = m.seq
	delete(r.lastSeq, old)
	m.id = serverID
}
