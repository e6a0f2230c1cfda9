package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/users"
)

type UsersCommand struct {
	bot         botApi
	userService UsersService
}

type UsersService interface {
	List(ctx context.Context, limit, offset int) ([]*users.User, error)
}

func NewUsersCommand(bot botApi, userService UsersService) *UsersCommand {
	return &UsersCommand{
		bot:         bot,
		userService: userService,
	}
}

func (c *UsersCommand) Execute(ctx context.Context, chatID int64) error {
	list, err := c.userService.List(ctx, 50, 0)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Ошибка при получении пользователей")
		_, _ = c.bot.Send(msg)
		return fmt.Errorf("list users: %w", err)
	}

	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Пользователей пока нет")
		_, err = c.bot.Send(msg)
		return err
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("👥 *Пользователи* (%d)\n\n", len(list)))
	for _, u := range list {
		name := fmt.Sprintf("id%d", u.TelegramID)
		if u.Username != nil {
			name = "@" + *u.Username
		}
		text.WriteString(fmt.Sprintf("• %s — с %s\n", name, u.CreatedAt.Format("02.01.2006")))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = "Markdown"
	_, err = c.bot.Send(msg)
	return err
}
