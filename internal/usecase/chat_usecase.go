package usecase

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/internal/domain/service"
	"gogotalk/internal/infrastructure/metrics"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
)

const (
	MaxMessageLength   = 1000
	MaxGroupNameLength = 30

	defaultAvatar = "https://i.pravatar.cc/300"
	maxEmojiRunes = 8
)

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	storage  service.ObjectStorage
	ledger   *UnreadLedger
	notifier Notifier
	now      func() time.Time
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	storage service.ObjectStorage,
	ledger *UnreadLedger,
	notifier Notifier,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		storage:  storage,
		ledger:   ledger,
		notifier: notifier,
		now:      time.Now,
	}
}

// MessagesEvent is pushed on every update of an open chat.
type MessagesEvent struct {
	ChatID   string               `json:"chat_id"`
	Messages []entity.MessageView `json:"messages"`
	Deleted  bool                 `json:"deleted,omitempty"`
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, identity *entity.Identity, chatID string) ([]entity.MessageView, error) {
	chat, err := uc.memberChat(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}
	return messageViews(chat.Messages), nil
}

// WatchMessages streams the chat's messages to emit until ctx is done. The
// stream ends with a Deleted event when the document goes away.
func (uc *ChatUseCase) WatchMessages(ctx context.Context, identity *entity.Identity, chatID string, emit func(MessagesEvent)) error {
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return err
	}

	it, err := uc.chatRepo.WatchByID(ctx, chatID)
	if err != nil {
		return err
	}
	defer it.Stop()

	for {
		chat, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("Message listener failed for chat %s: %v", chatID, err)
			return err
		}

		if chat == nil {
			emit(MessagesEvent{ChatID: chatID, Messages: []entity.MessageView{}, Deleted: true})
			return nil
		}
		emit(MessagesEvent{ChatID: chatID, Messages: messageViews(chat.Messages)})
	}
}

func (uc *ChatUseCase) Send(ctx context.Context, identity *entity.Identity, chatID, text string) (*entity.MessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, errors.BadRequest("Message is too long", nil)
	}
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return nil, err
	}

	msg := uc.newMessage(identity, uuid.New().String())
	msg.Text = text
	return uc.send(ctx, chatID, msg, "text"), nil
}

// SendEmoji sends a single emoji picked from the panel as a text message.
func (uc *ChatUseCase) SendEmoji(ctx context.Context, identity *entity.Identity, chatID, emoji string) (*entity.MessageView, error) {
	if !isEmoji(emoji) {
		return nil, errors.BadRequest("Not a single emoji", nil)
	}
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return nil, err
	}

	msg := uc.newMessage(identity, uuid.New().String())
	msg.Text = emoji
	return uc.send(ctx, chatID, msg, "emoji"), nil
}

// SendImage uploads the picture under a fresh key and, once a download URL
// exists, sends it as an image message. On failure nothing is sent.
func (uc *ChatUseCase) SendImage(ctx context.Context, identity *entity.Identity, chatID, contentType string, r io.Reader, size int64) (*entity.MessageView, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.BadRequest("Only images can be attached", nil)
	}
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return nil, err
	}

	key := uuid.New().String()
	uc.publishUpload(entity.UploadProgress{ChatID: chatID, Total: size, Uploading: true})

	handle, err := uc.storage.Upload(ctx, key, contentType, r, size, func(transferred int64) {
		uc.publishUpload(progressOf(chatID, transferred, size))
	})
	if err != nil {
		return nil, uc.uploadFailed(chatID, key, err)
	}

	url, err := uc.storage.DownloadURL(ctx, handle)
	if err != nil {
		return nil, uc.uploadFailed(chatID, key, err)
	}

	uc.publishUpload(entity.UploadProgress{ChatID: chatID, Transferred: size, Total: size, Percent: 100})
	metrics.Uploads.WithLabelValues("success").Inc()

	msg := uc.newMessage(identity, key)
	msg.Image = url
	return uc.send(ctx, chatID, msg, "image"), nil
}

func (uc *ChatUseCase) uploadFailed(chatID, key string, err error) error {
	logger.Error("Image upload failed: chat=%s, key=%s, error=%v", chatID, key, err)
	metrics.Uploads.WithLabelValues("failure").Inc()
	uc.publishUpload(entity.UploadProgress{ChatID: chatID, Uploading: false})
	return errors.Storage("Failed to upload image", err)
}

func (uc *ChatUseCase) publishUpload(p entity.UploadProgress) {
	if uc.notifier != nil {
		uc.notifier.Publish(EventUpload, p)
	}
}

func progressOf(chatID string, transferred, total int64) entity.UploadProgress {
	p := entity.UploadProgress{
		ChatID:      chatID,
		Transferred: transferred,
		Total:       total,
		Uploading:   true,
	}
	if total > 0 {
		p.Percent = float64(transferred) / float64(total) * 100
	}
	return p
}

func (uc *ChatUseCase) newMessage(identity *entity.Identity, id string) entity.Message {
	return entity.Message{
		ID:        id,
		CreatedAt: uc.now(),
		User: entity.MessageUser{
			ID:     identity.Email,
			Name:   identity.DisplayName,
			Avatar: defaultAvatar,
		},
	}
}

// send prepends msg to the chat. The write outlives the caller's context
// and its failure is only logged.
func (uc *ChatUseCase) send(ctx context.Context, chatID string, msg entity.Message, kind string) *entity.MessageView {
	msg.Sent = true
	msg.Received = false

	writeCtx := context.WithoutCancel(ctx)
	if err := uc.chatRepo.PrependMessage(writeCtx, chatID, msg, uc.now().UnixMilli()); err != nil {
		logger.LogWriteError("send_message", chatID, err)
		metrics.MessagesSent.WithLabelValues(kind, "failure").Inc()
	} else {
		metrics.MessagesSent.WithLabelValues(kind, "success").Inc()
	}

	view := msg.View()
	return &view
}

// LeaveChat hides the chat for identity. The document is deleted once every
// participant has left.
func (uc *ChatUseCase) LeaveChat(ctx context.Context, identity *entity.Identity, chatID string) error {
	chat, err := uc.memberChat(ctx, identity, chatID)
	if err != nil {
		return err
	}

	users := make([]entity.Participant, len(chat.Users))
	for i, u := range chat.Users {
		if u.Email == identity.Email {
			u.DeletedFromChat = true
		}
		users[i] = u
	}

	if err := uc.chatRepo.SetParticipants(ctx, chatID, users); err != nil {
		return err
	}

	chat.Users = users
	if chat.AllLeft() {
		logger.Info("All participants left chat %s, deleting it", chatID)
		return uc.chatRepo.Delete(ctx, chatID)
	}

	return nil
}

// ClearHistory empties the chat for everyone and zeroes its unread count.
func (uc *ChatUseCase) ClearHistory(ctx context.Context, identity *entity.Identity, chatID string) error {
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return err
	}

	if err := uc.chatRepo.ClearMessages(ctx, chatID, uc.now().UnixMilli()); err != nil {
		return err
	}

	uc.ledger.Reset(ctx, chatID)
	return nil
}

// OpenChat marks the chat as read.
func (uc *ChatUseCase) OpenChat(ctx context.Context, identity *entity.Identity, chatID string) (BadgeView, error) {
	if _, err := uc.memberChat(ctx, identity, chatID); err != nil {
		return BadgeView{}, err
	}

	uc.ledger.Reset(ctx, chatID)
	return uc.ledger.Badge(), nil
}

// CreateOrGetDirect returns the existing two-person chat with otherEmail,
// creating it when there is none. created reports which happened.
func (uc *ChatUseCase) CreateOrGetDirect(ctx context.Context, identity *entity.Identity, otherEmail string) (chat *entity.Chat, created bool, err error) {
	otherEmail = strings.TrimSpace(otherEmail)
	if otherEmail == "" || otherEmail == identity.Email {
		return nil, false, errors.BadRequest("Pick someone else to chat with", nil)
	}

	existing, err := uc.chatRepo.FindDirect(ctx, identity.Participant(), otherEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, err
	}

	other, err := uc.userRepo.GetByEmail(ctx, otherEmail)
	if err != nil {
		return nil, false, err
	}

	chat = &entity.Chat{
		Users: []entity.Participant{
			identity.Participant(),
			{Email: other.Email, Name: other.Name},
		},
		Messages:    []entity.Message{},
		LastUpdated: uc.now().UnixMilli(),
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, false, err
	}

	logger.Info("Direct chat %s created between %s and %s", chat.ID, identity.Email, other.Email)
	return chat, true, nil
}

// CreateGroup starts a group chat administered by its creator.
func (uc *ChatUseCase) CreateGroup(ctx context.Context, identity *entity.Identity, name string, memberEmails []string) (*entity.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.BadRequest("Group name is required", nil)
	}
	if utf8.RuneCountInString(name) > MaxGroupNameLength {
		return nil, errors.BadRequest("Group name is too long", nil)
	}

	users := []entity.Participant{identity.Participant()}
	seen := map[string]bool{identity.Email: true}
	for _, email := range memberEmails {
		email = strings.TrimSpace(email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		member, err := uc.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		users = append(users, entity.Participant{Email: member.Email, Name: member.Name})
	}

	if len(users) < 2 {
		return nil, errors.BadRequest("A group needs at least one other member", nil)
	}

	chat := &entity.Chat{
		Users:       users,
		Messages:    []entity.Message{},
		GroupName:   name,
		GroupAdmins: []string{identity.Email},
		LastUpdated: uc.now().UnixMilli(),
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

func (uc *ChatUseCase) ChatInfo(ctx context.Context, identity *entity.Identity, chatID string) (*entity.ChatInfo, error) {
	chat, err := uc.memberChat(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	return &entity.ChatInfo{
		ID:        chat.ID,
		Name:      ChatName(chat, identity),
		GroupName: chat.GroupName,
		IsGroup:   chat.IsGroup(),
		Admins:    chat.GroupAdmins,
		Users:     uniqueParticipants(chat.Users),
	}, nil
}

func (uc *ChatUseCase) memberChat(ctx context.Context, identity *entity.Identity, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, ok := chat.Participant(identity.Email); !ok {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}
	return chat, nil
}

// uniqueParticipants keeps the last record seen for each email, in order of
// first appearance.
func uniqueParticipants(users []entity.Participant) []entity.Participant {
	index := make(map[string]int, len(users))
	out := make([]entity.Participant, 0, len(users))
	for _, u := range users {
		if i, ok := index[u.Email]; ok {
			out[i] = u
			continue
		}
		index[u.Email] = len(out)
		out = append(out, u)
	}
	return out
}

func messageViews(messages []entity.Message) []entity.MessageView {
	views := make([]entity.MessageView, len(messages))
	for i, m := range messages {
		views[i] = m.View()
	}
	return views
}

const (
	zeroWidthJoiner = 0x200D
	keycap          = 0x20E3
)

// pictographic covers the code points that render as a standalone emoji.
// Regional indicators are excluded; they only count in pairs.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00A9, Hi: 0x00A9, Stride: 1},
		{Lo: 0x00AE, Hi: 0x00AE, Stride: 1},
		{Lo: 0x203C, Hi: 0x203C, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x21AA, Stride: 1},
		{Lo: 0x231A, Hi: 0x23FF, Stride: 1},
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303D, Hi: 0x303D, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F1E5, Stride: 1},
		{Lo: 0x1F200, Hi: 0x1FAFF, Stride: 1},
	},
	LatinOffset: 2,
}

// isEmoji accepts exactly one emoji: a flag pair, a keycap, or pictographs
// joined by ZWJ, each optionally followed by presentation selectors, skin
// tones or tag characters.
func isEmoji(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || len(runes) > maxEmojiRunes {
		return false
	}

	if len(runes) == 2 && isRegionalIndicator(runes[0]) && isRegionalIndicator(runes[1]) {
		return true
	}
	if isKeycap(runes) {
		return true
	}

	expectBase := true
	for _, r := range runes {
		switch {
		case expectBase:
			if !unicode.Is(pictographic, r) {
				return false
			}
			expectBase = false
		case r == zeroWidthJoiner:
			expectBase = true
		case isEmojiModifier(r):
		default:
			return false
		}
	}

	return !expectBase
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

func isKeycap(runes []rune) bool {
	switch len(runes) {
	case 2:
	case 3:
		if runes[1] != 0xFE0F {
			return false
		}
	default:
		return false
	}

	base := runes[0]
	return (base == '#' || base == '*' || (base >= '0' && base <= '9')) && runes[len(runes)-1] == keycap
}

// isEmojiModifier reports runes that decorate the preceding pictograph.
func isEmojiModifier(r rune) bool {
	switch {
	case r == 0xFE0E || r == 0xFE0F:
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r >= 0xE0020 && r <= 0xE007F:
		return true
	}
	return false
}
