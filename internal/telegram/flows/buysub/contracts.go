package buysub

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/telegram/flows"
	"altyn-bot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		Clear(chatID int64)
		GetBuySubData(chatID int64) (*flows.BuySubFlowData, error)
		SetState(chatID int64, state states.State, data any)
	}

	tariffService interface {
		GetActiveTariffs(ctx context.Context) ([]*tariffs.Tariff, error)
		GetTariff(ctx context.Context, id int64) (*tariffs.Tariff, error)
	}

	paymentService interface {
		CreateBillPayment(ctx context.Context, userID int64, tariff *tariffs.Tariff) (*payments.Payment, string, error)
		CheckBill(ctx context.Context, billID string) (*payments.Bill, error)
		CancelBill(ctx context.Context, billID string) error
	}

	subscriptionService interface {
		GetActiveForUser(ctx context.Context, userID int64) (*subs.Subscription, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
