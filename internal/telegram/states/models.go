package states

type State string

const (
	StateNone State = "none"
	StateDone State = "done"
)

// ubs -> user buy sub
const (
	UserBuySubWaitTariff  State = "ubs_wt_tariff"
	UserBuySubWaitPayment State = "ubs_wt_payment"
)
