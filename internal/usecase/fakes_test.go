package usecase

import (
	"context"
	stderrors "errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/internal/domain/service"
	"gogotalk/pkg/errors"
)

type memoryKV struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *memoryKV) Close() error { return nil }

type recordedEvent struct {
	Type string
	Data interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Data: data})
}

func (n *recordingNotifier) ofType(eventType string) []interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []interface{}
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e.Data)
		}
	}
	return out
}

// fakeChatRepo keeps chats in memory. Every write is pushed to the open
// single-chat watches.
type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	watchers map[string][]chan *entity.Chat
	list     chan *repository.ChatListSnapshot

	prependErr error
	deleted    []string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		watchers: make(map[string][]chan *entity.Chat),
		list:     make(chan *repository.ChatListSnapshot, 16),
	}
}

func (r *fakeChatRepo) put(chat *entity.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chat.ID] = cloneChat(chat)
}

func (r *fakeChatRepo) get(id string) *entity.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil
	}
	return cloneChat(chat)
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	r.put(chat)
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	chat := r.get(id)
	if chat == nil {
		return nil, errors.NotFound("Chat", nil)
	}
	return chat, nil
}

func (r *fakeChatRepo) FindDirect(ctx context.Context, self entity.Participant, otherEmail string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if chat.IsGroup() || len(chat.Users) != 2 {
			continue
		}
		if _, ok := chat.Participant(self.Email); !ok {
			continue
		}
		if _, ok := chat.Participant(otherEmail); ok {
			return cloneChat(chat), nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.chats, id)
	r.deleted = append(r.deleted, id)
	r.mu.Unlock()
	r.notify(id)
	return nil
}

func (r *fakeChatRepo) PrependMessage(ctx context.Context, chatID string, msg entity.Message, lastUpdated int64) error {
	if r.prependErr != nil {
		return r.prependErr
	}
	r.mu.Lock()
	chat, ok := r.chats[chatID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat", nil)
	}
	chat.Messages = append([]entity.Message{msg}, chat.Messages...)
	chat.LastUpdated = lastUpdated
	r.mu.Unlock()
	r.notify(chatID)
	return nil
}

func (r *fakeChatRepo) SetParticipants(ctx context.Context, chatID string, users []entity.Participant) error {
	r.mu.Lock()
	chat, ok := r.chats[chatID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat", nil)
	}
	chat.Users = append([]entity.Participant(nil), users...)
	r.mu.Unlock()
	r.notify(chatID)
	return nil
}

func (r *fakeChatRepo) ClearMessages(ctx context.Context, chatID string, lastUpdated int64) error {
	r.mu.Lock()
	chat, ok := r.chats[chatID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat", nil)
	}
	chat.Messages = []entity.Message{}
	chat.LastUpdated = lastUpdated
	r.mu.Unlock()
	r.notify(chatID)
	return nil
}

func (r *fakeChatRepo) WatchForParticipant(ctx context.Context, p entity.Participant) (repository.ChatListIterator, error) {
	return &fakeListIterator{ctx: ctx, ch: r.list}, nil
}

func (r *fakeChatRepo) WatchByID(ctx context.Context, chatID string) (repository.ChatIterator, error) {
	ch := make(chan *entity.Chat, 16)
	r.mu.Lock()
	r.watchers[chatID] = append(r.watchers[chatID], ch)
	if chat, ok := r.chats[chatID]; ok {
		ch <- cloneChat(chat)
	}
	r.mu.Unlock()
	return &fakeChatIterator{ctx: ctx, ch: ch}, nil
}

func (r *fakeChatRepo) notify(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var current *entity.Chat
	if chat, ok := r.chats[chatID]; ok {
		current = cloneChat(chat)
	}
	for _, ch := range r.watchers[chatID] {
		ch <- current
	}
}

type fakeListIterator struct {
	ctx context.Context
	ch  chan *repository.ChatListSnapshot
}

func (i *fakeListIterator) Next() (*repository.ChatListSnapshot, error) {
	select {
	case <-i.ctx.Done():
		return nil, i.ctx.Err()
	case snap, ok := <-i.ch:
		if !ok {
			return nil, stderrors.New("stream closed")
		}
		return snap, nil
	}
}

func (i *fakeListIterator) Stop() {}

type fakeChatIterator struct {
	ctx context.Context
	ch  chan *entity.Chat
}

func (i *fakeChatIterator) Next() (*entity.Chat, error) {
	select {
	case <-i.ctx.Done():
		return nil, i.ctx.Err()
	case chat := <-i.ch:
		return chat, nil
	}
}

func (i *fakeChatIterator) Stop() {}

func cloneChat(c *entity.Chat) *entity.Chat {
	out := *c
	out.Users = append([]entity.Participant(nil), c.Users...)
	out.Messages = append([]entity.Message(nil), c.Messages...)
	out.GroupAdmins = append([]string(nil), c.GroupAdmins...)
	return &out
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*entity.UserProfile
	writeErr error
	getErr   error
}

func newFakeUserRepo(users ...*entity.UserProfile) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.UserProfile)}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *u
	copied.Following = append([]string(nil), u.Following...)
	return &copied, nil
}

func (r *fakeUserRepo) ListExcept(ctx context.Context, email string) ([]*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.UserProfile
	for _, u := range r.users {
		if u.Email != email {
			out = append(out, u)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, email, name, about string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	u, ok := r.users[email]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Name = name
	u.About = about
	return nil
}

func (r *fakeUserRepo) SetFollowing(ctx context.Context, email string, following []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	u, ok := r.users[email]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Following = append([]string(nil), following...)
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
	return nil
}

func sortProfiles(users []*entity.UserProfile) {
	for i := 1; i < len(users); i++ {
		for j := i; j > 0 && users[j].Email < users[j-1].Email; j-- {
			users[j], users[j-1] = users[j-1], users[j]
		}
	}
}

type fakeStorage struct {
	uploadErr error
	urlErr    error
	uploaded  map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress service.ProgressFunc) (*entity.UploadHandle, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(int64(len(data)) / 2)
		progress(int64(len(data)))
	}
	s.uploaded[key] = data
	return &entity.UploadHandle{Key: key, Bucket: "test", ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *fakeStorage) DownloadURL(ctx context.Context, handle *entity.UploadHandle) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://files.test/" + handle.Key, nil
}

func (s *fakeStorage) Close() error { return nil }

type fakeAuthClient struct {
	mu        sync.Mutex
	current   *entity.Identity
	listeners []func(*entity.Identity)
	passwords map[string]string
	signUpErr error
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{passwords: make(map[string]string)}
}

func (f *fakeAuthClient) OnAuthStateChanged(l func(identity *entity.Identity)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	current := f.current
	f.mu.Unlock()
	l(current)
}

func (f *fakeAuthClient) CurrentUser() *entity.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeAuthClient) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	f.mu.Lock()
	stored, ok := f.passwords[email]
	f.mu.Unlock()
	if !ok || stored != password {
		return nil, stderrors.New("INVALID_PASSWORD")
	}
	identity := &entity.Identity{UID: "uid-" + email, Email: email, DisplayName: email}
	f.set(identity)
	return identity, nil
}

func (f *fakeAuthClient) SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.mu.Lock()
	f.passwords[email] = password
	f.mu.Unlock()
	identity := &entity.Identity{UID: "uid-" + email, Email: email, DisplayName: displayName}
	f.set(identity)
	return identity, nil
}

func (f *fakeAuthClient) SignOut(ctx context.Context) error {
	f.set(nil)
	return nil
}

func (f *fakeAuthClient) DeleteCurrentUser(ctx context.Context) error {
	f.mu.Lock()
	current := f.current
	f.mu.Unlock()
	if current == nil {
		return stderrors.New("no signed-in user")
	}
	f.mu.Lock()
	delete(f.passwords, current.Email)
	f.mu.Unlock()
	f.set(nil)
	return nil
}

func (f *fakeAuthClient) TestConnection(ctx context.Context) error { return nil }

func (f *fakeAuthClient) set(identity *entity.Identity) {
	f.mu.Lock()
	f.current = identity
	listeners := append(([]func(*entity.Identity))(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range listeners {
		l(identity)
	}
}
