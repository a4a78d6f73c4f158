package session

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/util"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RefreshEvent 数据变更事件，触发订阅方整窗重拉
type RefreshEvent struct {
	Table    string
	Action   string
	EntityID uint64
}

// Session 一次登录对应一个会话，持有该会话的信息流快照
// 快照排序使用由会话 ID 派生的随机种子，同一会话内抖动稳定
type Session struct {
	ID        string
	UserID    uint64
	Seed      int64
	CreatedAt time.Time

	version atomic.Int64

	mu          sync.RWMutex
	snapshot    []*dto.FeedItemDTO
	subscribers map[int64]chan RefreshEvent
	nextSubID   int64
	closed      bool
}

// NextVersion 会话内单调递增的版本号，用来判别过期的乐观状态
func (s *Session) NextVersion() int64 {
	return s.version.Add(1)
}

// Version 当前已分配到的最大版本号
func (s *Session) Version() int64 {
	return s.version.Load()
}

// Snapshot 返回当前快照的浅拷贝
func (s *Session) Snapshot() []*dto.FeedItemDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	items := make([]*dto.FeedItemDTO, len(s.snapshot))
	copy(items, s.snapshot)
	return items
}

func (s *Session) SetSnapshot(items []*dto.FeedItemDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = items
}

// UpdateItem 原地替换快照中的一条帖子，找不到则忽略
func (s *Session) UpdateItem(item *dto.FeedItemDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.snapshot {
		if existing.ID == item.ID {
			s.snapshot[i] = item
			return
		}
	}
}

// Subscribe 注册变更订阅，返回只读通道和取消函数
// 通道带缓冲，写满时丢弃事件，订阅方整窗重拉所以丢事件无害
func (s *Session) Subscribe() (<-chan RefreshEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch := make(chan RefreshEvent)
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan RefreshEvent, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Session) notify(event RefreshEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.snapshot = nil
}

// Manager 进程内会话注册表
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create 登录时建立新会话
func (m *Manager) Create(userID uint64) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:          id,
		UserID:      userID,
		Seed:        util.HashSessionID(id),
		CreatedAt:   time.Now(),
		subscribers: make(map[int64]chan RefreshEvent),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove 登出时销毁会话并关闭全部订阅
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.teardown()
	}
}

// NotifyUser 向某个用户的全部会话广播变更事件
func (m *Manager) NotifyUser(userID uint64, event RefreshEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.notify(event)
		}
	}
}

// NotifyAll 向所有会话广播变更事件
func (m *Manager) NotifyAll(event RefreshEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.notify(event)
	}
}
