package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tidemark/internal/app/client/remote"
	"tidemark/internal/domain/entity"
	"tidemark/internal/syncerr"
)

type fakeRemote struct {
	mu      gosync.Mutex
	token   string
	calls   []string
	pulls   []entity.Time
	delta   entity.Delta
	pullErr error
	// failFor maps an entity id to the error returned by push and delete.
	failFor map[string]error
	session remote.Session
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		failFor: make(map[string]error),
		session: remote.Session{Token: "jwt", User: remote.User{ID: "u1", Email: "a@b.c"}},
	}
}

func (f *fakeRemote) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeRemote) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) setFail(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failFor, id)
		return
	}
	f.failFor[id] = err
}

func (f *fakeRemote) Pull(_ context.Context, since entity.Time) (entity.Delta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls = append(f.pulls, since)
	if f.pullErr != nil {
		return entity.Delta{}, f.pullErr
	}
	return f.delta, nil
}

func (f *fakeRemote) Push(_ context.Context, kind entity.Kind, payload json.RawMessage) error {
	var base entity.Base
	if err := json.Unmarshal(payload, &base); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[base.ID]; err != nil {
		return err
	}
	f.calls = append(f.calls, fmt.Sprintf("push %s %s", kind, base.ID))
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, kind entity.Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[id]; err != nil {
		return err
	}
	f.calls = append(f.calls, fmt.Sprintf("delete %s %s", kind, id))
	return nil
}

func (f *fakeRemote) Exchange(_ context.Context, providerToken string) (remote.Session, error) {
	if providerToken == "bad" {
		return remote.Session{}, syncerr.FromStatus("exchange", 401, "invalid provider token")
	}
	return f.session, nil
}

func (f *fakeRemote) Login(context.Context, string, string) (remote.Session, error) {
	return f.session, nil
}

func (f *fakeRemote) Register(context.Context, string, string) (remote.Session, error) {
	return f.session, nil
}

type memLocal struct {
	mu        gosync.Mutex
	records   map[string]entity.Record
	folders   map[string]entity.Folder
	bookmarks map[string]entity.ChannelBookmark
}

func newMemLocal() *memLocal {
	return &memLocal{
		records:   make(map[string]entity.Record),
		folders:   make(map[string]entity.Folder),
		bookmarks: make(map[string]entity.ChannelBookmark),
	}
}

func values[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func index[T entity.Entity](items []T) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[it.GetID()] = it
	}
	return m
}

func (l *memLocal) Snapshot(context.Context) (entity.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return entity.Snapshot{Records: values(l.records), Folders: values(l.folders), ChannelBookmarks: values(l.bookmarks)}, nil
}

func (l *memLocal) ReplaceAll(_ context.Context, snap entity.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records, l.folders, l.bookmarks = index(snap.Records), index(snap.Folders), index(snap.ChannelBookmarks)
	return nil
}

func memSave[T entity.Entity](mu *gosync.Mutex, m map[string]T, item T) (bool, error) {
	mu.Lock()
	defer mu.Unlock()
	_, ok := m[item.GetID()]
	m[item.GetID()] = item
	return ok, nil
}

func memDelete[T entity.Entity](mu *gosync.Mutex, m map[string]T, id string) (T, bool, error) {
	mu.Lock()
	defer mu.Unlock()
	item, ok := m[id]
	delete(m, id)
	return item, ok, nil
}

func (l *memLocal) SaveRecord(_ context.Context, r entity.Record) (bool, error) {
	return memSave(&l.mu, l.records, r)
}

func (l *memLocal) SaveFolder(_ context.Context, f entity.Folder) (bool, error) {
	return memSave(&l.mu, l.folders, f)
}

func (l *memLocal) SaveBookmark(_ context.Context, b entity.ChannelBookmark) (bool, error) {
	return memSave(&l.mu, l.bookmarks, b)
}

func (l *memLocal) DeleteRecord(_ context.Context, id string) (entity.Record, bool, error) {
	return memDelete(&l.mu, l.records, id)
}

func (l *memLocal) DeleteFolder(_ context.Context, id string) (entity.Folder, bool, error) {
	return memDelete(&l.mu, l.folders, id)
}

func (l *memLocal) DeleteBookmark(_ context.Context, id string) (entity.ChannelBookmark, bool, error) {
	return memDelete(&l.mu, l.bookmarks, id)
}

func (l *memLocal) folder(id string) (entity.Folder, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.folders[id]
	return f, ok
}

type memKV struct {
	mu   gosync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (k *memKV) GetJSON(_ context.Context, key string, v any) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	data, ok := k.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (k *memKV) PutJSON(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = data
	return nil
}

type recordingPusher struct {
	mu     gosync.Mutex
	pushes []string
	ok     bool
}

func (p *recordingPusher) TryDirectPush(_ context.Context, endpoint string, body []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, endpoint+" "+string(body))
	return p.ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	engine *Engine
	remote *fakeRemote
	local  *memLocal
	kv     *memKV
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{remote: newFakeRemote(), local: newMemLocal(), kv: newMemKV()}
	h.engine = New(h.remote, h.local, h.kv, discardLogger(), opts...)
	require.NoError(t, h.engine.Load(context.Background()))
	return h
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	_, err := h.engine.Login(context.Background(), "provider")
	require.NoError(t, err)
}

func actions(q []QueueItem) []string {
	out := make([]string, len(q))
	for i, it := range q {
		out[i] = it.String()
	}
	return out
}
