package handler

import (
	"gogotalk/internal/usecase"
)

var (
	authHandler     *AuthHandler
	userHandler     *UserHandler
	settingsHandler *SettingsHandler
	chatHandler     *ChatHandler
	contactHandler  *ContactHandler
	unreadHandler   *UnreadHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	themeSettings *usecase.ThemeSettings,
	chatUseCase *usecase.ChatUseCase,
	reconciler *usecase.ChatListReconciler,
	contactUseCase *usecase.ContactUseCase,
	ledger *usecase.UnreadLedger,
	session *usecase.SessionHolder,
) {
	authHandler = NewAuthHandler(authUseCase, session)
	userHandler = NewUserHandler(userUseCase)
	settingsHandler = NewSettingsHandler(themeSettings)
	chatHandler = NewChatHandler(chatUseCase, reconciler)
	contactHandler = NewContactHandler(contactUseCase)
	unreadHandler = NewUnreadHandler(ledger)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetSettingsHandler() *SettingsHandler {
	return settingsHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetContactHandler() *ContactHandler {
	return contactHandler
}

func GetUnreadHandler() *UnreadHandler {
	return unreadHandler
}
