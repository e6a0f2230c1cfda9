package telegram

// AdminChecker проверяет права по списку telegram_id из конфигурации.
type AdminChecker struct {
	admins map[int64]struct{}
}

func NewAdminChecker(adminIDs []int64) *AdminChecker {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &AdminChecker{admins: admins}
}

func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	_, ok := a.admins[telegramID]
	return ok
}
