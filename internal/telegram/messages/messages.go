package messages

// Общие
const (
	Error  = "❌ Ошибка. Пожалуйста, попробуйте позже."
	Cancel = "Отменено"
)

// Справка
const (
	Help = "Доступные команды:\n\n" +
		"/start — Главное меню\n" +
		"/buy — Купить подписку\n" +
		"/status — Статус подписки"

	AdminHelp = "\n\nКоманды администратора:\n" +
		"/stats — Статистика\n" +
		"/payments — Последние платежи\n" +
		"/users — Пользователи\n" +
		"/tariffs — Тарифы\n" +
		"/newtariff — Создать тариф"
)

// Права
const (
	AdminOnly = "❌ Команда доступна только администраторам"
)
