package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nk-nigeria/vip-module/entity"
)

var errVersionCheck = errors.New("storage write rejected - version check failed")

type fakeStore struct {
	mu       sync.Mutex
	values   map[string]string
	versions map[string]int
	writes   int
	failNext int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, versions: map[string]int{}}
}

func (f *fakeStore) ReadVip(ctx context.Context, userID string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[userID]
	if !ok {
		return "", "", nil
	}
	return v, strconv.Itoa(f.versions[userID]), nil
}

func (f *fakeStore) WriteVip(ctx context.Context, userID, value, version string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return "", errVersionCheck
	}
	_, exists := f.values[userID]
	switch {
	case version == "*" && exists:
		return "", errVersionCheck
	case version != "" && version != "*" && version != strconv.Itoa(f.versions[userID]):
		return "", errVersionCheck
	}
	f.writes++
	f.values[userID] = value
	f.versions[userID]++
	return strconv.Itoa(f.versions[userID]), nil
}

func (f *fakeStore) progress(userID string) *entity.VipProgress {
	p, _ := entity.ParseVipProgress(f.values[userID])
	return p
}

type fakeStats struct {
	total int64
	err   error
}

func (f *fakeStats) WageredTotal(ctx context.Context, userID string) (int64, error) {
	return f.total, f.err
}

type memNotificationRepo struct {
	mu     sync.Mutex
	nextId int64
	items  []*entity.Notification
	now    func() time.Time
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{now: time.Now}
}

func (r *memNotificationRepo) AddNotification(ctx context.Context, n *entity.Notification, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	n.Id = r.nextId
	n.CreateTimeUnix = r.now().Unix()
	r.items = append(r.items, n)
	owned := r.byUser(n.RecipientId)
	if len(owned) > capacity {
		drop := map[int64]bool{}
		for _, o := range owned[capacity:] {
			drop[o.Id] = true
		}
		kept := r.items[:0]
		for _, it := range r.items {
			if !drop[it.Id] {
				kept = append(kept, it)
			}
		}
		r.items = kept
	}
	return nil
}

// newest first
func (r *memNotificationRepo) byUser(userID string) []*entity.Notification {
	ml := make([]*entity.Notification, 0)
	for _, it := range r.items {
		if it.RecipientId == userID {
			ml = append(ml, it)
		}
	}
	sort.Slice(ml, func(i, j int) bool { return ml[i].Id > ml[j].Id })
	return ml
}

func (r *memNotificationRepo) ListNotification(ctx context.Context, userID string, limit int64, cursor string, unreadOnly bool) (*entity.ListNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ml := make([]*entity.Notification, 0)
	for _, it := range r.byUser(userID) {
		if unreadOnly && it.Read {
			continue
		}
		ml = append(ml, it)
	}
	total := int64(len(ml))
	if int64(len(ml)) > limit {
		ml = ml[:limit]
	}
	return &entity.ListNotification{Notifications: ml, Total: total, Limit: limit}, nil
}

func (r *memNotificationRepo) find(id int64, userID string) *entity.Notification {
	for _, it := range r.items {
		if it.Id == id && it.RecipientId == userID {
			return it
		}
	}
	return nil
}

func (r *memNotificationRepo) ReadNotification(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.find(id, userID)
	if n == nil {
		return ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (r *memNotificationRepo) ReadAllNotification(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.byUser(userID) {
		it.Read = true
	}
	return nil
}

func (r *memNotificationRepo) DeleteNotification(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.Id == id && it.RecipientId == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *memNotificationRepo) DeleteAllNotification(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, it := range r.items {
		if it.RecipientId != userID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

func (r *memNotificationRepo) CountUnreadNotification(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := int64(0)
	for _, it := range r.byUser(userID) {
		if !it.Read {
			total++
		}
	}
	return total, nil
}

func (r *memNotificationRepo) PruneNotification(ctx context.Context, readBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	deleted := int64(0)
	for _, it := range r.items {
		if it.Read && it.CreateTimeUnix < readBefore.Unix() {
			deleted++
			continue
		}
		kept = append(kept, it)
	}
	r.items = kept
	return deleted, nil
}

type fakePusher struct {
	pushed []*entity.Notification
	err    error
}

func (p *fakePusher) Push(ctx context.Context, n *entity.Notification) error {
	p.pushed = append(p.pushed, n)
	return p.err
}

type publishedEvent struct {
	subject    string
	name       string
	properties map[string]string
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(subject, name string, properties map[string]string) {
	p.events = append(p.events, publishedEvent{subject: subject, name: name, properties: properties})
}

type fakeBoard struct {
	scores map[string]int64
}

func (b *fakeBoard) WriteLifetimePoints(ctx context.Context, userID string, points int64) error {
	if b.scores == nil {
		b.scores = map[string]int64{}
	}
	b.scores[userID] = points
	return nil
}
