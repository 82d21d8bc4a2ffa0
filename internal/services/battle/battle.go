package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/stardust/internal/apperr"
	"github.com/fastprodman/stardust/internal/config"
	"github.com/fastprodman/stardust/internal/infra/pgutils"
	"github.com/fastprodman/stardust/internal/metrics"
	"github.com/fastprodman/stardust/internal/repos/accounts"
	"github.com/fastprodman/stardust/internal/repos/battles"
	"github.com/fastprodman/stardust/internal/repos/pets"
	"github.com/fastprodman/stardust/internal/rng"
	"github.com/fastprodman/stardust/internal/wager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Deps struct {
	DB       *sql.DB
	Accounts accounts.Accounts
	Pets     pets.Pets
	Battles  battles.Battles
	RNG      rng.Source
	Rules    wager.Rules
	Retry    config.RetryConfig
	Logger   *slog.Logger
}

// Engine settles PvE wagers.
type Engine struct {
	db       *sql.DB
	accounts accounts.Accounts
	pets     pets.Pets
	battles  battles.Battles
	rng      rng.Source
	rules    wager.Rules
	retry    config.RetryConfig
	log      *slog.Logger
}

func New(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RNG == nil {
		d.RNG = rng.NewCrypto()
	}

	return &Engine{
		db:       d.DB,
		accounts: d.Accounts,
		pets:     d.Pets,
		battles:  d.Battles,
		rng:      d.RNG,
		rules:    d.Rules,
		retry:    d.Retry,
		log:      d.Logger.With("component", "battle"),
	}
}

type Result struct {
	BattleID   uuid.UUID       `json:"battleId"`
	Result     battles.Result  `json:"result"`
	Roll       float64         `json:"roll"`
	WinChance  float64         `json:"winChance"`
	Fee        decimal.Decimal `json:"fee"`
	Reward     int64           `json:"reward"`
	NewBalance int64           `json:"newBalance"`
	PetHunger  int             `json:"petHunger"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Fight runs one PvE battle in a single transaction:
//
// 1) Lock account and pet, check eligibility and funds.
// 2) Debit the bet.
// 3) Draw the outcome against the pet's win chance.
// 4) Credit the reward on a win.
// 5) Record the battle and feed the pet's hunger cost.
func (e *Engine) Fight(ctx context.Context, userID uint64, bet int64) (Result, error) {
	started := time.Now()

	res, err := e.fight(ctx, userID, bet)
	if err != nil {
		metrics.RecordWager(metrics.OpFight, string(apperr.KindOf(err)), started)
		return Result{}, fmt.Errorf("fight: %w", err)
	}

	metrics.RecordWager(metrics.OpFight, string(res.Result), started)
	metrics.AddFee("battle", res.Fee.InexactFloat64())

	e.log.InfoContext(ctx, "battle settled",
		"user_id", userID,
		"battle_id", res.BattleID,
		"bet", bet,
		"result", res.Result,
		"win_chance", res.WinChance,
		"reward", res.Reward,
	)

	return res, nil
}

func (e *Engine) fight(ctx context.Context, userID uint64, bet int64) (Result, error) {
	if bet <= 0 {
		return Result{}, apperr.New(apperr.KindInvalidInput, "Bet amount must be greater than zero.")
	}

	var out Result

	err := pgutils.WithRetryTx(ctx, e.db, e.retry, func(tx *sql.Tx) error {
		balance, err := e.accounts.LockAndGetBalance(tx, userID)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return apperr.New(apperr.KindAccountNotFound, "Account %d not found.", userID)
			}

			return fmt.Errorf("lock account: %w", err)
		}

		pet, err := e.pets.GetForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, pets.ErrPetNotFound) {
				return apperr.New(apperr.KindPetNotFound, "You need a pet to battle.")
			}

			return fmt.Errorf("lock pet: %w", err)
		}

		ok, why := e.rules.Eligible(pet.Stage, pet.Hunger)
		if !ok {
			return ineligible(why, e.rules)
		}

		// pre-check against locked balance; Debit is still guarded
		if balance < bet {
			return apperr.InsufficientFunds(bet)
		}

		newBalance, err := e.accounts.Debit(tx, userID, bet)
		if err != nil {
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return apperr.InsufficientFunds(bet)
			}

			return fmt.Errorf("debit bet: %w", err)
		}

		chance := e.rules.WinChance(pet.Stage, pet.Hunger)
		roll := e.rng.Float64()
		win := roll <= chance

		fee, reward := e.rules.BattlePayout(bet, win)
		if reward > 0 {
			newBalance, err = e.accounts.Credit(tx, userID, reward)
			if err != nil {
				return fmt.Errorf("credit reward: %w", err)
			}
		}

		result := battles.ResultLoss
		if win {
			result = battles.ResultWin
		}

		id := uuid.New()

		createdAt, err := e.battles.Insert(tx, battles.Battle{
			ID:           id,
			UserID:       userID,
			PetID:        pet.ID,
			BetAmount:    bet,
			FeeAmount:    fee,
			WinChance:    chance,
			Roll:         roll,
			Result:       result,
			RewardAmount: reward,
		})
		if err != nil {
			return fmt.Errorf("record battle: %w", err)
		}

		hunger := e.rules.FedHunger(pet.Hunger)

		pet, err = e.pets.Update(tx, pet.ID, pets.Update{Hunger: &hunger})
		if err != nil {
			return fmt.Errorf("update pet: %w", err)
		}

		out = Result{
			BattleID:   id,
			Result:     result,
			Roll:       roll,
			WinChance:  chance,
			Fee:        fee,
			Reward:     reward,
			NewBalance: newBalance,
			PetHunger:  pet.Hunger,
			Message:    message(result, bet, reward),
			CreatedAt:  createdAt,
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return out, nil
}

func ineligible(why wager.Ineligibility, r wager.Rules) error {
	switch why {
	case wager.StageTooLow:
		return apperr.New(apperr.KindPetIneligible, "Your pet must reach stage %d to battle.", r.MinStage)
	default:
		return apperr.New(apperr.KindPetIneligible, "Your pet is too hungry to battle. Hunger must be above %d.", r.MinHunger)
	}
}

func message(result battles.Result, bet, reward int64) string {
	if result == battles.ResultWin {
		return fmt.Sprintf("Victory! Your pet won %d Stardust.", reward)
	}

	return fmt.Sprintf("Defeat! Your pet lost the battle and %d Stardust.", bet)
}
