package repository

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/pkg/errors"
)

const chatsCollection = "chats"

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.Messages == nil {
		chat.Messages = []entity.Message{}
	}

	_, err := r.client.Collection(chatsCollection).Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection(chatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	return chatFromDoc(doc)
}

func (r *firestoreChatRepository) FindDirect(ctx context.Context, self entity.Participant, otherEmail string) (*entity.Chat, error) {
	docs, err := r.client.Collection(chatsCollection).
		Where("users", "array-contains", participantValue(self)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query chats", err)
	}

	for _, doc := range docs {
		chat, err := chatFromDoc(doc)
		if err != nil {
			log.Printf("Skipping malformed chat %s: %v", doc.Ref.ID, err)
			continue
		}
		if chat.IsGroup() || len(chat.Users) != 2 {
			continue
		}
		if _, ok := chat.Participant(otherEmail); ok {
			return chat, nil
		}
	}

	return nil, errors.NotFound("Chat", nil)
}

func (r *firestoreChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(chatsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) PrependMessage(ctx context.Context, chatID string, msg entity.Message, lastUpdated int64) error {
	ref := r.client.Collection(chatsCollection).Doc(chatID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return err
		}

		messages := make([]entity.Message, 0, len(chat.Messages)+1)
		messages = append(messages, msg)
		messages = append(messages, chat.Messages...)

		return tx.Set(ref, map[string]interface{}{
			"messages":    messages,
			"lastUpdated": lastUpdated,
		}, firestore.MergeAll)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) SetParticipants(ctx context.Context, chatID string, users []entity.Participant) error {
	_, err := r.client.Collection(chatsCollection).Doc(chatID).Set(ctx, map[string]interface{}{
		"users": users,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update participants", err)
	}

	return nil
}

func (r *firestoreChatRepository) ClearMessages(ctx context.Context, chatID string, lastUpdated int64) error {
	_, err := r.client.Collection(chatsCollection).Doc(chatID).Set(ctx, map[string]interface{}{
		"messages":    []entity.Message{},
		"lastUpdated": lastUpdated,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to clear chat history", err)
	}

	return nil
}

func (r *firestoreChatRepository) WatchForParticipant(ctx context.Context, p entity.Participant) (repository.ChatListIterator, error) {
	query := r.client.Collection(chatsCollection).
		Where("users", "array-contains", participantValue(p)).
		OrderBy("lastUpdated", firestore.Desc)

	return &chatListIterator{it: query.Snapshots(ctx)}, nil
}

func (r *firestoreChatRepository) WatchByID(ctx context.Context, chatID string) (repository.ChatIterator, error) {
	return &chatIterator{it: r.client.Collection(chatsCollection).Doc(chatID).Snapshots(ctx)}, nil
}

// participantValue builds the exact "users" element an active member is
// stored as; array-contains only matches whole elements.
func participantValue(p entity.Participant) map[string]interface{} {
	return map[string]interface{}{
		"email":           p.Email,
		"name":            p.Name,
		"deletedFromChat": false,
	}
}

func chatFromDoc(doc *firestore.DocumentSnapshot) (*entity.Chat, error) {
	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	chat.ID = doc.Ref.ID
	return &chat, nil
}

type chatListIterator struct {
	it *firestore.QuerySnapshotIterator
}

func (i *chatListIterator) Next() (*repository.ChatListSnapshot, error) {
	snap, err := i.it.Next()
	if err != nil {
		return nil, err
	}

	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, err
	}

	out := &repository.ChatListSnapshot{
		Chats: make([]*entity.Chat, 0, len(docs)),
	}
	for _, doc := range docs {
		chat, err := chatFromDoc(doc)
		if err != nil {
			log.Printf("Skipping malformed chat %s: %v", doc.Ref.ID, err)
			continue
		}
		out.Chats = append(out.Chats, chat)
	}

	for _, change := range snap.Changes {
		chat, err := chatFromDoc(change.Doc)
		if err != nil {
			log.Printf("Skipping malformed chat change %s: %v", change.Doc.Ref.ID, err)
			continue
		}
		out.Changes = append(out.Changes, repository.ChatChange{
			Kind: changeKind(change.Kind),
			Chat: chat,
		})
	}

	return out, nil
}

func (i *chatListIterator) Stop() {
	i.it.Stop()
}

func changeKind(kind firestore.DocumentChangeKind) repository.ChangeKind {
	switch kind {
	case firestore.DocumentAdded:
		return repository.ChangeAdded
	case firestore.DocumentRemoved:
		return repository.ChangeRemoved
	default:
		return repository.ChangeModified
	}
}

type chatIterator struct {
	it *firestore.DocumentSnapshotIterator
}

func (i *chatIterator) Next() (*entity.Chat, error) {
	doc, err := i.it.Next()
	if err != nil {
		return nil, err
	}
	if !doc.Exists() {
		return nil, nil
	}
	return chatFromDoc(doc)
}

func (i *chatIterator) Stop() {
	i.it.Stop()
}
