package domain

import "time"

// BetRecord is one completed bet kept in the append-only bet history.
// ID and Timestamp are assigned by the store.
type BetRecord struct {
	ID        uint64    `json:"id"`
	Player    string    `json:"player"`
	Amount    float64   `json:"amount"`
	BetType   string    `json:"betType"`
	Result    int       `json:"result"`
	Win       bool      `json:"win"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBetRecord builds a record from a settled bet.
func NewBetRecord(player string, amount float64, betType string, result int, win bool) BetRecord {
	return BetRecord{
		Player:  player,
		Amount:  amount,
		BetType: betType,
		Result:  result,
		Win:     win,
	}
}

// SameBet compares the business fields, ignoring store-assigned ones.
func (r BetRecord) SameBet(other BetRecord) bool {
	return r.Player == other.Player &&
		r.Amount == other.Amount &&
		r.BetType == other.BetType &&
		r.Result == other.Result &&
		r.Win == other.Win
}
