package flows

// BuySubFlowData — данные флоу покупки подписки.
type BuySubFlowData struct {
	UserID     int64
	TelegramID int64
	Language   string
	MessageID  *int

	TariffID   int64
	TariffName string
	Price      float64

	BillID *string
	PayURL *string
}
