package lobby

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
	"github.com/fastprodman/stardust/internal/repos/lobbies"
	"github.com/fastprodman/stardust/internal/rng"
	"github.com/fastprodman/stardust/internal/wager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Deps struct {
	DB       *sql.DB
	Accounts accounts.Accounts
	Lobbies  lobbies.Lobbies
	RNG      rng.Source
	Rules    wager.Rules
	Retry    config.RetryConfig
	Logger   *slog.Logger
}

// Manager runs the PvP lobby lifecycle: waiting -> completed | cancelled.
type Manager struct {
	db       *sql.DB
	accounts accounts.Accounts
	lobbies  lobbies.Lobbies
	rng      rng.Source
	rules    wager.Rules
	retry    config.RetryConfig
	log      *slog.Logger
}

func New(d Deps) *Manager {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RNG == nil {
		d.RNG = rng.NewCrypto()
	}

	return &Manager{
		db:       d.DB,
		accounts: d.Accounts,
		lobbies:  d.Lobbies,
		rng:      d.RNG,
		rules:    d.Rules,
		retry:    d.Retry,
		log:      d.Logger.With("component", "lobby"),
	}
}

type JoinResult struct {
	Lobby    lobbies.Lobby   `json:"lobby"`
	WinnerID uint64          `json:"winnerId"`
	Prize    int64           `json:"prize"`
	Fee      decimal.Decimal `json:"fee"`
	Message  string          `json:"message"`
}

// Create escrows the creator's bet and opens a waiting lobby.
func (m *Manager) Create(ctx context.Context, userID uint64, bet int64) (lobbies.Lobby, error) {
	started := time.Now()

	l, err := m.create(ctx, userID, bet)
	if err != nil {
		metrics.RecordWager(metrics.OpCreateLobby, string(apperr.KindOf(err)), started)
		return lobbies.Lobby{}, fmt.Errorf("create lobby: %w", err)
	}

	metrics.RecordWager(metrics.OpCreateLobby, "ok", started)
	m.log.InfoContext(ctx, "lobby created", "lobby_id", l.ID, "creator_id", userID, "bet", bet)

	return l, nil
}

func (m *Manager) create(ctx context.Context, userID uint64, bet int64) (lobbies.Lobby, error) {
	if bet <= 0 {
		return lobbies.Lobby{}, apperr.New(apperr.KindInvalidInput, "Bet amount must be greater than zero.")
	}

	var out lobbies.Lobby

	err := pgutils.WithRetryTx(ctx, m.db, m.retry, func(tx *sql.Tx) error {
		balance, err := m.accounts.LockAndGetBalance(tx, userID)
		if err != nil {
			return accountErr(err, userID)
		}

		waiting, err := m.lobbies.HasWaiting(tx, userID)
		if err != nil {
			return err
		}
		if waiting {
			return duplicateLobby()
		}

		if balance < bet {
			return apperr.InsufficientFunds(bet)
		}

		_, err = m.accounts.Debit(tx, userID, bet)
		if err != nil {
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return apperr.InsufficientFunds(bet)
			}

			return fmt.Errorf("escrow bet: %w", err)
		}

		out, err = m.lobbies.Insert(tx, uuid.New(), userID, bet)
		if err != nil {
			if errors.Is(err, lobbies.ErrDuplicateWaiting) {
				return duplicateLobby()
			}

			return err
		}

		return nil
	})
	if err != nil {
		return lobbies.Lobby{}, err
	}

	return out, nil
}

// Join matches the joiner's stake against the creator's, draws a winner and
// pays the prize, all in one transaction. Lock order is lobby row first,
// then both accounts ascending by id.
func (m *Manager) Join(ctx context.Context, userID uint64, lobbyID uuid.UUID) (JoinResult, error) {
	started := time.Now()

	res, err := m.join(ctx, userID, lobbyID)
	if err != nil {
		metrics.RecordWager(metrics.OpJoinLobby, string(apperr.KindOf(err)), started)
		return JoinResult{}, fmt.Errorf("join lobby: %w", err)
	}

	metrics.RecordWager(metrics.OpJoinLobby, "ok", started)
	metrics.AddFee("lobby", res.Fee.InexactFloat64())

	m.log.InfoContext(ctx, "lobby settled",
		"lobby_id", lobbyID,
		"creator_id", res.Lobby.CreatorID,
		"joiner_id", userID,
		"winner_id", res.WinnerID,
		"prize", res.Prize,
	)

	return res, nil
}

func (m *Manager) join(ctx context.Context, userID uint64, lobbyID uuid.UUID) (JoinResult, error) {
	var out JoinResult

	err := pgutils.WithRetryTx(ctx, m.db, m.retry, func(tx *sql.Tx) error {
		l, err := m.lobbies.GetForUpdate(tx, lobbyID)
		if err != nil {
			if errors.Is(err, lobbies.ErrLobbyNotFound) {
				return lobbyNotFound()
			}

			return err
		}

		if l.Status != lobbies.StatusWaiting {
			return lobbyUnavailable()
		}

		if l.CreatorID == userID {
			return apperr.New(apperr.KindSelfJoinForbidden, "You cannot join your own lobby.")
		}

		balances, err := m.accounts.LockMany(tx, l.CreatorID, userID)
		if err != nil {
			return accountErr(err, userID)
		}

		if balances[userID] < l.BetAmount {
			return apperr.InsufficientFunds(l.BetAmount)
		}

		_, err = m.accounts.Debit(tx, userID, l.BetAmount)
		if err != nil {
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return apperr.InsufficientFunds(l.BetAmount)
			}

			return fmt.Errorf("debit joiner: %w", err)
		}

		winner := userID
		if m.rng.Float64() < 0.5 {
			winner = l.CreatorID
		}

		fee, prize := m.rules.LobbyPayout(l.BetAmount)

		_, err = m.accounts.Credit(tx, winner, prize)
		if err != nil {
			return fmt.Errorf("credit winner: %w", err)
		}

		done, err := m.lobbies.Complete(tx, lobbyID, lobbies.Settlement{
			JoinerID: userID,
			WinnerID: winner,
			Prize:    prize,
		})
		if err != nil {
			if errors.Is(err, lobbies.ErrNotWaiting) {
				return lobbyUnavailable()
			}

			return err
		}

		out = JoinResult{
			Lobby:    done,
			WinnerID: winner,
			Prize:    prize,
			Fee:      fee,
			Message:  joinMessage(userID, winner, prize),
		}

		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	return out, nil
}

// Cancel refunds the creator's escrow and closes a waiting lobby.
func (m *Manager) Cancel(ctx context.Context, userID uint64, lobbyID uuid.UUID) (lobbies.Lobby, error) {
	started := time.Now()

	l, err := m.cancel(ctx, userID, lobbyID)
	if err != nil {
		metrics.RecordWager(metrics.OpCancelLobby, string(apperr.KindOf(err)), started)
		return lobbies.Lobby{}, fmt.Errorf("cancel lobby: %w", err)
	}

	metrics.RecordWager(metrics.OpCancelLobby, "ok", started)
	m.log.InfoContext(ctx, "lobby cancelled", "lobby_id", lobbyID, "creator_id", userID, "refund", l.BetAmount)

	return l, nil
}

func (m *Manager) cancel(ctx context.Context, userID uint64, lobbyID uuid.UUID) (lobbies.Lobby, error) {
	var out lobbies.Lobby

	err := pgutils.WithRetryTx(ctx, m.db, m.retry, func(tx *sql.Tx) error {
		l, err := m.lobbies.GetForUpdate(tx, lobbyID)
		if err != nil {
			if errors.Is(err, lobbies.ErrLobbyNotFound) {
				return lobbyNotFound()
			}

			return err
		}

		if l.CreatorID != userID {
			return apperr.New(apperr.KindNotLobbyOwner, "Only the creator can cancel this lobby.")
		}

		if l.Status != lobbies.StatusWaiting {
			return lobbyUnavailable()
		}

		out, err = m.lobbies.Cancel(tx, lobbyID)
		if err != nil {
			if errors.Is(err, lobbies.ErrNotWaiting) {
				return lobbyUnavailable()
			}

			return err
		}

		_, err = m.accounts.Credit(tx, l.CreatorID, l.BetAmount)
		if err != nil {
			return fmt.Errorf("refund creator: %w", err)
		}

		return nil
	})
	if err != nil {
		return lobbies.Lobby{}, err
	}

	return out, nil
}

// Open lists waiting lobbies, newest first.
func (m *Manager) Open(ctx context.Context) ([]lobbies.Lobby, error) {
	out, err := m.lobbies.ListWaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("open lobbies: %w", err)
	}

	return out, nil
}

// accountErr names the missing account when the repo reports it, else userID.
func accountErr(err error, userID uint64) error {
	var missing *accounts.MissingAccountError
	if errors.As(err, &missing) {
		userID = missing.UserID
	}

	if errors.Is(err, accounts.ErrAccountNotFound) {
		return apperr.New(apperr.KindAccountNotFound, "Account %d not found.", userID)
	}

	return fmt.Errorf("lock accounts: %w", err)
}

func lobbyNotFound() error {
	return apperr.New(apperr.KindLobbyNotFound, "Lobby not found.")
}

func lobbyUnavailable() error {
	return apperr.New(apperr.KindLobbyUnavailable, "This lobby is no longer available.")
}

func duplicateLobby() error {
	return apperr.New(apperr.KindDuplicateLobby, "You already have an open lobby.")
}

func joinMessage(joiner, winner uint64, prize int64) string {
	if joiner == winner {
		return fmt.Sprintf("You won the duel and %d Stardust!", prize)
	}

	return fmt.Sprintf("You lost the duel. User %d takes %d Stardust.", winner, prize)
}
