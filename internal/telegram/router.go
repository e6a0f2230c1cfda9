package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/users"
	"altyn-bot/internal/telegram/cmds"
	"altyn-bot/internal/telegram/flows/buysub"
	"altyn-bot/internal/telegram/messages"
	"altyn-bot/internal/telegram/states"
)

type Router struct {
	bot          botApi
	stateManager stateManager
	userService  userService
	adminChecker adminChecker

	// Handlers
	buySubHandler   *buysub.Handler
	statusCommand   *cmds.StatusCommand
	statsCommand    *cmds.StatsCommand
	paymentsCommand *cmds.PaymentsCommand
	usersCommand    *cmds.UsersCommand
	tariffsCommand  *cmds.TariffsCommand
}

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type stateManager interface {
	GetState(chatID int64) states.State
	SetState(chatID int64, state states.State, data any)
	Clear(chatID int64)
}

type userService interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username string) (*users.User, error)
}

type adminChecker interface {
	IsAdmin(telegramID int64) bool
}

func NewRouter(
	bot botApi,
	sm stateManager,
	us userService,
	ac adminChecker,
	buySubHandler *buysub.Handler,
	statusCommand *cmds.StatusCommand,
	statsCommand *cmds.StatsCommand,
	paymentsCommand *cmds.PaymentsCommand,
	usersCommand *cmds.UsersCommand,
	tariffsCommand *cmds.TariffsCommand,
) *Router {
	return &Router{
		bot:             bot,
		stateManager:    sm,
		userService:     us,
		adminChecker:    ac,
		buySubHandler:   buySubHandler,
		statusCommand:   statusCommand,
		statsCommand:    statsCommand,
		paymentsCommand: paymentsCommand,
		usersCommand:    usersCommand,
		tariffsCommand:  tariffsCommand,
	}
}

// SetupBotCommands регистрирует команды в меню бота.
func (r *Router) SetupBotCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Главное меню"},
		tgbotapi.BotCommand{Command: "buy", Description: "Купить подписку"},
		tgbotapi.BotCommand{Command: "status", Description: "Статус подписки"},
		tgbotapi.BotCommand{Command: "help", Description: "Справка"},
	)
	_, err := r.bot.Request(commands)
	return err
}

func (r *Router) Route(update *tgbotapi.Update) error {
	ctx := context.Background()

	telegramID := extractUserID(update)
	if telegramID == 0 {
		return nil // Некорректный update
	}

	user, err := r.userService.GetOrCreateByTelegramID(ctx, telegramID, extractUsername(update))
	if err != nil {
		_ = r.sendError(extractChatID(update))
		return err
	}

	// ПРИОРИТЕТ: команды отменяют любой флоу
	if update.Message != nil && update.Message.IsCommand() {
		r.stateManager.Clear(update.Message.Chat.ID)
		return r.handleCommand(ctx, update, user)
	}

	chatID := extractChatID(update)
	state := r.stateManager.GetState(chatID)

	if update.CallbackQuery != nil {
		callbackData := update.CallbackQuery.Data
		switch {
		case callbackData == "stats_refresh":
			if !r.adminChecker.IsAdmin(user.TelegramID) {
				_, _ = r.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "❌ Нет прав"))
				return nil
			}
			_, _ = r.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "✅ Обновлено"))
			return r.statsCommand.Refresh(ctx, chatID, update.CallbackQuery.Message.MessageID)
		case strings.HasPrefix(callbackData, "trf_toggle:"):
			if !r.adminChecker.IsAdmin(user.TelegramID) {
				_, _ = r.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "❌ Нет прав"))
				return nil
			}
			return r.tariffsCommand.HandleToggle(ctx, update.CallbackQuery)
		}
	}

	// Флоу покупки подписки
	if strings.HasPrefix(string(state), "ubs_") {
		return r.buySubHandler.Handle(update, state)
	}

	return r.sendHelp(chatID, user.TelegramID)
}

func (r *Router) handleCommand(ctx context.Context, update *tgbotapi.Update, user *users.User) error {
	chatID := update.Message.Chat.ID
	lang := extractLanguage(update)

	switch update.Message.Command() {
	case "start", "help":
		return r.sendHelp(chatID, user.TelegramID)
	case "buy":
		return r.buySubHandler.Start(user.ID, user.TelegramID, chatID, lang)
	case "status":
		return r.statusCommand.Execute(ctx, user.ID, chatID)
	case "stats":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.sendAdminOnly(chatID)
		}
		return r.statsCommand.Execute(ctx, chatID)
	case "payments":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.sendAdminOnly(chatID)
		}
		return r.paymentsCommand.Execute(ctx, chatID)
	case "users":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.sendAdminOnly(chatID)
		}
		return r.usersCommand.Execute(ctx, chatID)
	case "tariffs":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.sendAdminOnly(chatID)
		}
		return r.tariffsCommand.Execute(ctx, chatID)
	case "newtariff":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.sendAdminOnly(chatID)
		}
		return r.tariffsCommand.ExecuteCreate(ctx, chatID, update.Message.CommandArguments())
	default:
		return r.sendHelp(chatID, user.TelegramID)
	}
}

func (r *Router) sendHelp(chatID, telegramID int64) error {
	if chatID == 0 {
		return nil
	}

	text := messages.Help
	if r.adminChecker.IsAdmin(telegramID) {
		text += messages.AdminHelp
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) sendAdminOnly(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, messages.AdminOnly)
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) sendError(chatID int64) error {
	if chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, messages.Error)
	_, err := r.bot.Send(msg)
	return err
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractUsername(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.UserName
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.UserName
	}
	return ""
}

func extractLanguage(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil && update.Message.From.LanguageCode == "en" {
		return "en"
	}
	return "ru"
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
