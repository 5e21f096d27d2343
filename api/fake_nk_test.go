package api

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	nkapi "github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/cgbdb"
	"github.com/nk-nigeria/vip-module/entity"
	objectstorage "github.com/nk-nigeria/vip-module/object-storage"
)

const testUser = "548b7190-b8e3-47d6-8b2f-6321c35cacb2"

var errStorageVersion = errors.New("storage version check failed")

type storageKey struct {
	collection, key, userID string
}

type storedObject struct {
	value   string
	version int
	write   *runtime.StorageWrite
}

type sentNotification struct {
	userID, subject string
	content         map[string]interface{}
	code            int
}

type walletUpdate struct {
	userID    string
	changeset map[string]int64
	metadata  map[string]interface{}
}

// fakeNk implements only what the VIP module calls.
type fakeNk struct {
	runtime.NakamaModule

	mu            sync.Mutex
	objects       map[storageKey]*storedObject
	notifications []sentNotification
	wallets       []walletUpdate
	scores        map[string]int64
	leaderboards  []string
	walletErr     error
	failWrites    int
}

func newFakeNk() *fakeNk {
	return &fakeNk{
		objects: make(map[storageKey]*storedObject),
		scores:  make(map[string]int64),
	}
}

func (f *fakeNk) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*nkapi.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*nkapi.StorageObject, 0, len(reads))
	for _, r := range reads {
		o, ok := f.objects[storageKey{r.Collection, r.Key, r.UserID}]
		if !ok {
			continue
		}
		out = append(out, &nkapi.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			UserId:     r.UserID,
			Value:      o.value,
			Version:    strconv.Itoa(o.version),
		})
	}
	return out, nil
}

func (f *fakeNk) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*nkapi.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites > 0 {
		f.failWrites--
		return nil, errStorageVersion
	}
	acks := make([]*nkapi.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := storageKey{w.Collection, w.Key, w.UserID}
		o, exists := f.objects[k]
		switch {
		case w.Version == "":
		case w.Version == "*":
			if exists {
				return nil, errStorageVersion
			}
		default:
			if !exists || strconv.Itoa(o.version) != w.Version {
				return nil, errStorageVersion
			}
		}
		if !exists {
			o = &storedObject{}
			f.objects[k] = o
		}
		o.value = w.Value
		o.version++
		o.write = w
		acks = append(acks, &nkapi.StorageObjectAck{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Version:    strconv.Itoa(o.version),
		})
	}
	return acks, nil
}

func (f *fakeNk) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, sentNotification{userID: userID, subject: subject, content: content, code: code})
	return nil
}

func (f *fakeNk) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.walletErr != nil {
		return nil, nil, f.walletErr
	}
	f.wallets = append(f.wallets, walletUpdate{userID: userID, changeset: changeset, metadata: metadata})
	return changeset, map[string]int64{}, nil
}

func (f *fakeNk) AccountsGetId(ctx context.Context, userIDs []string) ([]*nkapi.Account, error) {
	out := make([]*nkapi.Account, 0, len(userIDs))
	for _, id := range userIDs {
		out = append(out, &nkapi.Account{User: &nkapi.User{Id: id, Username: "user-" + id[:4]}})
	}
	return out, nil
}

func (f *fakeNk) LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboards = append(f.leaderboards, id+":"+sortOrder+":"+operator)
	return nil
}

func (f *fakeNk) LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*nkapi.LeaderboardRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if score > f.scores[ownerID] {
		f.scores[ownerID] = score
	}
	return &nkapi.LeaderboardRecord{LeaderboardId: id, OwnerId: ownerID, Score: f.scores[ownerID]}, nil
}

// memWagers is an in-memory wager ledger acting as recorder and stats.
type memWagers struct {
	mu     sync.Mutex
	wagers []*entity.Wager
	err    error
}

func (m *memWagers) RecordWager(ctx context.Context, wager *entity.Wager) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	wager.Id = int64(len(m.wagers) + 1)
	m.wagers = append(m.wagers, wager)
	return nil
}

func (m *memWagers) ListWager(ctx context.Context, userID string, limit, offset int) ([]entity.Wager, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	owned := make([]entity.Wager, 0)
	for i := len(m.wagers) - 1; i >= 0; i-- {
		if m.wagers[i].UserId == userID {
			owned = append(owned, *m.wagers[i])
		}
	}
	total := int64(len(owned))
	if offset >= len(owned) {
		return []entity.Wager{}, total, nil
	}
	owned = owned[offset:]
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, total, nil
}

func (m *memWagers) WageredTotal(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(0)
	for _, w := range m.wagers {
		if w.UserId == userID {
			total += w.Amount
		}
	}
	return total, nil
}

type fakeObjStorage struct {
	objectstorage.EmptyStorage
	data []byte
	err  error
}

func (f *fakeObjStorage) GetObject(bucketName string, objectName string) ([]byte, error) {
	return f.data, f.err
}

type countingNotifier struct {
	mu    sync.Mutex
	items []*entity.Notification
}

func (c *countingNotifier) Notify(ctx context.Context, n *entity.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
	return nil
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

// memBonusLedger keeps claims keyed by user and month like vip_bonus_claim.
type memBonusLedger struct {
	mu     sync.Mutex
	claims map[string]*entity.BonusClaim
	adds   int
	addErr error
	delErr error
}

func newMemBonusLedger() *memBonusLedger {
	return &memBonusLedger{claims: make(map[string]*entity.BonusClaim)}
}

func (l *memBonusLedger) AddBonusClaim(ctx context.Context, claim *entity.BonusClaim) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.addErr != nil {
		return l.addErr
	}
	k := claim.UserId + "/" + claim.MonthKey
	if _, ok := l.claims[k]; ok {
		return cgbdb.ErrBonusClaimDuplicate
	}
	l.adds++
	claim.Id = int64(l.adds)
	l.claims[k] = claim
	return nil
}

func (l *memBonusLedger) DeleteBonusClaim(ctx context.Context, userID, monthKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.delErr != nil {
		return l.delErr
	}
	delete(l.claims, userID+"/"+monthKey)
	return nil
}

func (l *memBonusLedger) ListBonusClaim(ctx context.Context, userID string, limit int64) ([]*entity.BonusClaim, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.addErr != nil {
		return nil, l.addErr
	}
	ml := make([]*entity.BonusClaim, 0)
	for _, c := range l.claims {
		if c.UserId == userID {
			ml = append(ml, c)
		}
	}
	sort.Slice(ml, func(i, j int) bool { return ml[i].Id > ml[j].Id })
	return ml, nil
}

// memNotifications is a small notification repository without cursors.
type memNotifications struct {
	mu     sync.Mutex
	nextId int64
	items  []*entity.Notification
}

func (r *memNotifications) AddNotification(ctx context.Context, n *entity.Notification, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	n.Id = r.nextId
	r.items = append(r.items, n)
	return nil
}

func (r *memNotifications) find(id int64, userID string) int {
	for i, it := range r.items {
		if it.Id == id && it.RecipientId == userID {
			return i
		}
	}
	return -1
}

func (r *memNotifications) ListNotification(ctx context.Context, userID string, limit int64, cursor string, unreadOnly bool) (*entity.ListNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ml := make([]*entity.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		it := r.items[i]
		if it.RecipientId != userID || (unreadOnly && it.Read) {
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

func (r *memNotifications) ReadNotification(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id, userID)
	if i < 0 {
		return entity.ErrNotificationNotFound
	}
	r.items[i].Read = true
	return nil
}

func (r *memNotifications) ReadAllNotification(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.RecipientId == userID {
			it.Read = true
		}
	}
	return nil
}

func (r *memNotifications) DeleteNotification(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id, userID)
	if i < 0 {
		return entity.ErrNotificationNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *memNotifications) DeleteAllNotification(ctx context.Context, userID string) error {
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

func (r *memNotifications) CountUnreadNotification(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unread := int64(0)
	for _, it := range r.items {
		if it.RecipientId == userID && !it.Read {
			unread++
		}
	}
	return unread, nil
}

func (r *memNotifications) PruneNotification(ctx context.Context, readBefore time.Time) (int64, error) {
	return 0, nil
}
