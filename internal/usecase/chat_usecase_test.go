package usecase

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogotalk/internal/domain/entity"
	"gogotalk/pkg/errors"
)

type chatFixture struct {
	repo     *fakeChatRepo
	users    *fakeUserRepo
	storage  *fakeStorage
	ledger   *UnreadLedger
	notifier *recordingNotifier
	uc       *ChatUseCase
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		repo: newFakeChatRepo(),
		users: newFakeUserRepo(
			&entity.UserProfile{Email: me.Email, Name: me.DisplayName},
			&entity.UserProfile{Email: "bob@x.com", Name: "Bob Stone"},
			&entity.UserProfile{Email: "cy@x.com", Name: "Cy"},
		),
		storage:  newFakeStorage(),
		ledger:   NewUnreadLedger(newMemoryKV()),
		notifier: &recordingNotifier{},
	}
	f.uc = NewChatUseCase(f.repo, f.users, f.storage, f.ledger, f.notifier)
	return f
}

func (f *chatFixture) directChat(id string) *entity.Chat {
	chat := &entity.Chat{
		ID: id,
		Users: []entity.Participant{
			{Email: me.Email, Name: me.DisplayName},
			{Email: "bob@x.com", Name: "Bob Stone"},
		},
		Messages: []entity.Message{},
	}
	f.repo.put(chat)
	return chat
}

func TestSendRoundTripsThroughStream(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan MessagesEvent, 8)
	go func() {
		_ = f.uc.WatchMessages(ctx, me, "c1", func(e MessagesEvent) { events <- e })
	}()

	first := <-events
	assert.Empty(t, first.Messages)

	sent, err := f.uc.Send(ctx, me, "c1", "hello there")
	require.NoError(t, err)

	select {
	case e := <-events:
		require.Len(t, e.Messages, 1)
		got := e.Messages[0]
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "hello there", got.Text)
		assert.Equal(t, "", got.Image)
		assert.True(t, got.Sent)
		assert.False(t, got.Received)
		assert.Equal(t, me.Email, got.User.ID)
	case <-time.After(time.Second):
		t.Fatal("no update after send")
	}
}

func TestSendPrependsNewestFirst(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()

	_, err := f.uc.Send(ctx, me, "c1", "first")
	require.NoError(t, err)
	_, err = f.uc.Send(ctx, me, "c1", "second")
	require.NoError(t, err)

	chat := f.repo.get("c1")
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "second", chat.Messages[0].Text)
	assert.Equal(t, "first", chat.Messages[1].Text)
	assert.NotZero(t, chat.LastUpdated)
}

func TestSendValidatesText(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()

	_, err := f.uc.Send(ctx, me, "c1", "   ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.Send(ctx, me, "c1", string(bytes.Repeat([]byte("a"), MaxMessageLength+1)))
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendWriteFailureIsNotSurfaced(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	f.repo.prependErr = stderrors.New("unavailable")

	view, err := f.uc.Send(context.Background(), me, "c1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Text)
	assert.Empty(t, f.repo.get("c1").Messages)
}

func TestSendEmoji(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()

	view, err := f.uc.SendEmoji(ctx, me, "c1", "😀")
	require.NoError(t, err)
	assert.Equal(t, "😀", view.Text)

	_, err = f.uc.SendEmoji(ctx, me, "c1", "👍🏽")
	require.NoError(t, err)

	_, err = f.uc.SendEmoji(ctx, me, "c1", "hello")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.SendEmoji(ctx, me, "c1", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	assert.Len(t, f.repo.get("c1").Messages, 2)
}

func TestIsEmoji(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"single pictograph", "😀", true},
		{"skin tone", "👍🏽", true},
		{"presentation selector", "❤\uFE0F", true},
		{"zwj family", "👨\u200D👩\u200D👧", true},
		{"flag pair", "🇯🇵", true},
		{"keycap", "1\uFE0F\u20E3", true},
		{"tag sequence", "\U0001F3F4\U000E0067\U000E0062\U000E0065\U000E006E\U000E0067\U000E007F", true},
		{"repeated pictographs", "😀😀😀😀", false},
		{"two different pictographs", "😀👍", false},
		{"degree sign", "°", false},
		{"trailing joiner", "😀\u200D", false},
		{"lone regional indicator", "🇯", false},
		{"plain digit", "1", false},
		{"text", "hello", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEmoji(tt.input))
		})
	}
}

func TestSendImage(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")

	data := []byte("fake-png-bytes")
	view, err := f.uc.SendImage(context.Background(), me, "c1", "image/png", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, "", view.Text)
	assert.Equal(t, "https://files.test/"+view.ID, view.Image)
	assert.Equal(t, data, f.storage.uploaded[view.ID])

	chat := f.repo.get("c1")
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, view.Image, chat.Messages[0].Image)

	progress := f.notifier.ofType(EventUpload)
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1].(entity.UploadProgress)
	assert.False(t, last.Uploading)
	assert.Equal(t, float64(100), last.Percent)
}

func TestSendImageUploadFailureSendsNothing(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	f.storage.uploadErr = stderrors.New("quota exceeded")

	_, err := f.uc.SendImage(context.Background(), me, "c1", "image/jpeg", bytes.NewReader([]byte("x")), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "STORAGE_ERROR"))
	assert.Empty(t, f.repo.get("c1").Messages)

	progress := f.notifier.ofType(EventUpload)
	require.NotEmpty(t, progress)
	assert.False(t, progress[len(progress)-1].(entity.UploadProgress).Uploading)
}

func TestSendImageDownloadURLFailure(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	f.storage.urlErr = stderrors.New("no token")

	_, err := f.uc.SendImage(context.Background(), me, "c1", "image/jpeg", bytes.NewReader([]byte("x")), 1)
	assert.True(t, errors.Is(err, "STORAGE_ERROR"))
	assert.Empty(t, f.repo.get("c1").Messages)
}

func TestSendImageRejectsNonImages(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")

	_, err := f.uc.SendImage(context.Background(), me, "c1", "application/pdf", bytes.NewReader([]byte("x")), 1)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestLeaveChatCooperativeDelete(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	x := &entity.Identity{Email: "x@x.com", DisplayName: "X"}
	y := &entity.Identity{Email: "y@x.com", DisplayName: "Y"}
	f.repo.put(&entity.Chat{
		ID:    "shared",
		Users: []entity.Participant{{Email: x.Email, Name: "X"}, {Email: y.Email, Name: "Y"}},
	})

	require.NoError(t, f.uc.LeaveChat(ctx, x, "shared"))

	chat := f.repo.get("shared")
	require.NotNil(t, chat)
	px, _ := chat.Participant(x.Email)
	py, _ := chat.Participant(y.Email)
	assert.True(t, px.DeletedFromChat)
	assert.False(t, py.DeletedFromChat)

	require.NoError(t, f.uc.LeaveChat(ctx, y, "shared"))

	assert.Nil(t, f.repo.get("shared"))
	assert.Equal(t, []string{"shared"}, f.repo.deleted)
}

func TestLeaveChatRequiresMembership(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")

	stranger := &entity.Identity{Email: "z@x.com"}
	err := f.uc.LeaveChat(context.Background(), stranger, "c1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendRequiresMembership(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()
	stranger := &entity.Identity{Email: "z@x.com", DisplayName: "Zed"}

	_, err := f.uc.Send(ctx, stranger, "c1", "hi")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.SendEmoji(ctx, stranger, "c1", "😀")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.Send(ctx, me, "missing", "hi")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	assert.Empty(t, f.repo.get("c1").Messages)
}

func TestClearHistoryResetsLedger(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	f.repo.put(chatWithLatest("c1", "bob@x.com", "Bob Stone", "hey"))
	f.ledger.Increment(ctx, "c1")
	f.ledger.Increment(ctx, "c1")

	require.NoError(t, f.uc.ClearHistory(ctx, me, "c1"))

	assert.Empty(t, f.repo.get("c1").Messages)
	assert.Equal(t, 0, f.ledger.Count("c1"))
}

func TestOpenChatResetsLedger(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()
	f.ledger.Increment(ctx, "c1")
	f.ledger.Increment(ctx, "c2")

	badge, err := f.uc.OpenChat(ctx, me, "c1")

	require.NoError(t, err)
	assert.Equal(t, BadgeView{Sum: 1, Label: "1"}, badge)
}

func TestOpenChatRequiresMembership(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")
	ctx := context.Background()
	f.ledger.Increment(ctx, "c1")

	stranger := &entity.Identity{Email: "z@x.com"}
	_, err := f.uc.OpenChat(ctx, stranger, "c1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Equal(t, 1, f.ledger.Count("c1"))

	_, err = f.uc.OpenChat(ctx, me, "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	_, tracked := f.ledger.Snapshot()["missing"]
	assert.False(t, tracked)
}

func TestCreateOrGetDirect(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	chat, created, err := f.uc.CreateOrGetDirect(ctx, me, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, chat.Users, 2)
	assert.Empty(t, chat.Messages)

	again, created, err := f.uc.CreateOrGetDirect(ctx, me, "bob@x.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)

	_, _, err = f.uc.CreateOrGetDirect(ctx, me, me.Email)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, _, err = f.uc.CreateOrGetDirect(ctx, me, "ghost@x.com")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestCreateGroup(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	chat, err := f.uc.CreateGroup(ctx, me, "  Climbers ", []string{"bob@x.com", "cy@x.com", "bob@x.com", me.Email})
	require.NoError(t, err)
	assert.Equal(t, "Climbers", chat.GroupName)
	assert.Equal(t, []string{me.Email}, chat.GroupAdmins)
	assert.Len(t, chat.Users, 3)

	_, err = f.uc.CreateGroup(ctx, me, "this group name is far too long to fit", []string{"bob@x.com"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.CreateGroup(ctx, me, "Solo", nil)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestChatInfoListsUniqueUsers(t *testing.T) {
	f := newChatFixture()
	f.repo.put(&entity.Chat{
		ID:        "g1",
		GroupName: "Team",
		Users: []entity.Participant{
			{Email: me.Email, Name: "Me"},
			{Email: "bob@x.com", Name: "Bob"},
			{Email: "bob@x.com", Name: "Bobby"},
		},
	})

	info, err := f.uc.ChatInfo(context.Background(), me, "g1")
	require.NoError(t, err)
	assert.True(t, info.IsGroup)
	assert.Equal(t, "Team", info.Name)
	require.Len(t, info.Users, 2)
	assert.Equal(t, "Bobby", info.Users[1].Name)
}

func TestGetMessagesNotFound(t *testing.T) {
	f := newChatFixture()
	_, err := f.uc.GetMessages(context.Background(), me, "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestWatchMessagesReportsDeletion(t *testing.T) {
	f := newChatFixture()
	f.directChat("c1")

	events := make(chan MessagesEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- f.uc.WatchMessages(context.Background(), me, "c1", func(e MessagesEvent) { events <- e })
	}()

	<-events
	require.NoError(t, f.repo.Delete(context.Background(), "c1"))

	e := <-events
	assert.True(t, e.Deleted)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not end after deletion")
	}
}
