package session

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndGet(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, uint64(7), sess.UserID)
	assert.Equal(t, util.HashSessionID(sess.ID), sess.Seed)

	got, ok := mgr.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = mgr.Get("missing")
	assert.False(t, ok)
}

func TestManager_SessionsHaveDistinctSeeds(t *testing.T) {
	mgr := NewManager()
	a := mgr.Create(7)
	b := mgr.Create(7)

	assert.NotEqual(t, a.ID, b.ID)
	// 种子由会话 ID 派生，同一用户的两个会话抖动不同
	assert.NotEqual(t, a.Seed, b.Seed)
}

func TestSession_NextVersionMonotonic(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)

	prev := sess.NextVersion()
	for i := 0; i < 10; i++ {
		next := sess.NextVersion()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestSession_SnapshotIsShallowCopy(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)
	sess.SetSnapshot([]*dto.FeedItemDTO{{ID: 1}, {ID: 2}})

	items := sess.Snapshot()
	items[0] = &dto.FeedItemDTO{ID: 99}

	assert.Equal(t, uint64(1), sess.Snapshot()[0].ID)
}

func TestSession_UpdateItem(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)
	sess.SetSnapshot([]*dto.FeedItemDTO{{ID: 1, LikesCount: 0}})

	sess.UpdateItem(&dto.FeedItemDTO{ID: 1, LikesCount: 5})
	assert.Equal(t, 5, sess.Snapshot()[0].LikesCount)

	// 不在快照里的条目直接忽略
	sess.UpdateItem(&dto.FeedItemDTO{ID: 42})
	assert.Len(t, sess.Snapshot(), 1)
}

func TestSession_SubscribeAndNotify(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)
	other := mgr.Create(8)

	ch, cancel := sess.Subscribe()
	defer cancel()
	otherCh, otherCancel := other.Subscribe()
	defer otherCancel()

	mgr.NotifyUser(7, RefreshEvent{Table: "likes", Action: "INSERT", EntityID: 1})

	select {
	case event := <-ch:
		assert.Equal(t, "likes", event.Table)
		assert.Equal(t, uint64(1), event.EntityID)
	default:
		t.Fatal("期望收到刷新事件")
	}

	select {
	case <-otherCh:
		t.Fatal("不应该收到其他用户的定向事件")
	default:
	}

	mgr.NotifyAll(RefreshEvent{Table: "posts", Action: "UPDATE"})
	select {
	case event := <-otherCh:
		assert.Equal(t, "posts", event.Table)
	default:
		t.Fatal("广播事件应到达所有会话")
	}
}

func TestSession_NotifyDropsWhenBufferFull(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)

	_, cancel := sess.Subscribe()
	defer cancel()

	// 无人消费时事件被丢弃而不是阻塞
	for i := 0; i < 100; i++ {
		mgr.NotifyUser(7, RefreshEvent{Table: "likes"})
	}
}

func TestSession_CancelStopsDelivery(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)

	ch, cancel := sess.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// 取消后再广播不会 panic
	mgr.NotifyUser(7, RefreshEvent{Table: "likes"})
}

func TestManager_RemoveClosesSubscribers(t *testing.T) {
	mgr := NewManager()
	sess := mgr.Create(7)
	ch, _ := sess.Subscribe()

	mgr.Remove(sess.ID)

	_, ok := mgr.Get(sess.ID)
	assert.False(t, ok)

	_, open := <-ch
	assert.False(t, open)

	// 销毁后的会话再订阅得到已关闭的通道
	lateCh, lateCancel := sess.Subscribe()
	defer lateCancel()
	_, open = <-lateCh
	assert.False(t, open)
	assert.Nil(t, sess.Snapshot())
}
