package confirm

import "github.com/pkg/errors"

// Исходы подтверждения, которые HTTP-слой переводит в коды ответов.
var (
	// ErrPaymentNotFound — счёт неизвестен, запись-заглушка не создаётся.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrUserMissing — платёж есть, а владельца нет: нарушение целостности.
	ErrUserMissing = errors.New("payment owner not found")

	// ErrProvisioning — панель не выдала ключ, платёж остаётся pending.
	ErrProvisioning = errors.New("vpn key provisioning failed")

	// ErrConflict — попытка увести платёж из терминального статуса.
	ErrConflict = errors.New("payment status conflict")
)
