package battles

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Battle is write-once: there is no update or delete path.
type Battle struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uint64          `json:"userId"`
	PetID        int64           `json:"petId"`
	BetAmount    int64           `json:"betAmount"`
	FeeAmount    decimal.Decimal `json:"feeAmount"`
	WinChance    float64         `json:"winChance"`
	Roll         float64         `json:"roll"`
	Result       Result          `json:"result"`
	RewardAmount int64           `json:"rewardAmount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Battles interface {
	// Insert stores b and returns its creation time.
	Insert(tx *sql.Tx, b Battle) (time.Time, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]Battle, error)
}
