package deposit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/pkg/logger"
	"github.com/paydail/paydail-service/pkg/metrics"
)

// UserStore is the user persistence the engine needs.
type UserStore interface {
	GetByDepositAddress(ctx context.Context, address string) (*entities.UserAccount, entities.Network, error)
	AddToBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error
}

// DepositStore is the deposit persistence the engine needs.
type DepositStore interface {
	GetByTxHash(ctx context.Context, txHash string) (*entities.Deposit, error)
	Create(ctx context.Context, deposit *entities.Deposit) error
	Update(ctx context.Context, deposit *entities.Deposit) error
}

// NotificationStore records user notifications.
type NotificationStore interface {
	Create(ctx context.Context, notification *entities.Notification) error
}

// TransferFetcher retrieves the full transfer record from the provider.
type TransferFetcher interface {
	GetTransfer(ctx context.Context, coin, walletID, transferID string) (json.RawMessage, error)
}

// Outcome summarizes what reconciliation did with one event.
type Outcome struct {
	Ignored   bool
	Reason    string
	Processed int
	Skipped   int
	Errors    int
}

// Engine reconciles provider transfer events against user balances. Entries
// are processed sequentially; a failing entry never blocks the rest.
type Engine struct {
	users         UserStore
	deposits      DepositStore
	notifications NotificationStore
	converter     *Converter
	resolver      *AssetResolver
	transfers     TransferFetcher
	wallets       map[entities.Asset]string
	log           *logger.Logger
	now           func() time.Time
}

// NewEngine creates a reconciliation engine. transfers may be nil, in which
// case events are processed from the webhook payload alone; wallets maps
// each asset to the provider wallet id used for detail fetches.
func NewEngine(
	users UserStore,
	deposits DepositStore,
	notifications NotificationStore,
	converter *Converter,
	resolver *AssetResolver,
	transfers TransferFetcher,
	wallets map[entities.Asset]string,
	log *logger.Logger,
) *Engine {
	return &Engine{
		users:         users,
		deposits:      deposits,
		notifications: notifications,
		converter:     converter,
		resolver:      resolver,
		transfers:     transfers,
		wallets:       wallets,
		log:           log,
		now:           time.Now,
	}
}

// WithClock replaces the engine's clock
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Process reconciles one transfer event. The returned error covers only
// failures that make the whole event unprocessable; per-entry failures are
// counted in the outcome and logged.
func (e *Engine) Process(ctx context.Context, event *TransferEvent) (Outcome, error) {
	asset, ok := e.resolver.Resolve(event.Coin)
	if !ok {
		e.log.Info("Ignoring transfer event for unsupported coin",
			"coin", event.Coin, "transfer_id", event.TransferID)
		return Outcome{Ignored: true, Reason: "unsupported coin"}, nil
	}

	entries := event.DepositEntries()
	if len(entries) == 0 {
		e.enrichFromProvider(ctx, asset, event)
		entries = event.DepositEntries()
	}
	if len(entries) == 0 {
		e.log.Info("Ignoring transfer event with no deposit entries",
			"coin", event.Coin, "transfer_id", event.TransferID, "type", event.Type)
		return Outcome{Ignored: true, Reason: "no deposit entries"}, nil
	}

	now := e.now()
	status := NormalizeStatus(event.State)
	reference := event.Reference(now)
	createdAt := event.CreatedAt(now)

	txHash := event.TxHash
	if txHash == "" {
		txHash = reference
	}

	var outcome Outcome
	for _, entry := range entries {
		result, err := e.processEntry(ctx, asset, entry, status, reference, txHash, createdAt)
		if err != nil {
			outcome.Errors++
			metrics.DepositEntriesTotal.WithLabelValues("error").Inc()
			e.log.Error("Failed to process deposit entry",
				"address", entry.Address, "tx_hash", txHash, "error", err)
			continue
		}

		metrics.DepositEntriesTotal.WithLabelValues(result).Inc()
		if result == entrySkipped {
			outcome.Skipped++
		} else {
			outcome.Processed++
		}
	}

	return outcome, nil
}

const (
	entryInserted = "inserted"
	entryUpdated  = "updated"
	entryCredited = "credited"
	entrySkipped  = "skipped"
)

func (e *Engine) processEntry(
	ctx context.Context,
	asset entities.Asset,
	entry Entry,
	status, reference, txHash string,
	createdAt time.Time,
) (string, error) {
	user, network, err := e.users.GetByDepositAddress(ctx, entry.Address)
	if err != nil {
		return "", fmt.Errorf("address lookup failed: %w", err)
	}
	if user == nil {
		e.log.Info("Skipping deposit entry, address has no owner", "address", entry.Address)
		return entrySkipped, nil
	}
	if network == "" {
		network = entities.DepositNetwork[asset]
	}

	amount := NormalizeAmount(asset, entry.Value)
	conv := e.converter.Convert(ctx, asset, amount)

	existing, err := e.deposits.GetByTxHash(ctx, txHash)
	if err != nil {
		return "", fmt.Errorf("deposit lookup failed: %w", err)
	}

	if existing == nil {
		return e.insertDeposit(ctx, user, asset, network, amount, conv, status, reference, txHash, entry.Address, createdAt)
	}

	if existing.UserID != user.ID {
		e.log.Warn("Deposit tx hash already recorded for another user",
			"tx_hash", txHash, "address", entry.Address)
		return entrySkipped, nil
	}

	return e.updateDeposit(ctx, user, existing, amount, conv, status)
}

func (e *Engine) insertDeposit(
	ctx context.Context,
	user *entities.UserAccount,
	asset entities.Asset,
	network entities.Network,
	amount decimal.Decimal,
	conv Conversion,
	status, reference, txHash, address string,
	createdAt time.Time,
) (string, error) {
	dep := &entities.Deposit{
		ID:              uuid.New(),
		UserID:          user.ID,
		Reference:       reference,
		Coin:            string(asset),
		NetworkChain:    string(network),
		CryptoAmount:    amount,
		EquivalentNaira: conv.NetNaira,
		FeeNaira:        conv.FeeNaira,
		RateUsed:        conv.RateUsed,
		WalletAddress:   address,
		TxHash:          txHash,
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       e.now(),
	}

	if err := e.deposits.Create(ctx, dep); err != nil {
		return "", fmt.Errorf("failed to record deposit: %w", err)
	}

	result := entryInserted
	if entities.IsCreditableStatus(status) {
		if err := e.users.AddToBalance(ctx, user.ID, conv.NetNaira); err != nil {
			return "", fmt.Errorf("failed to credit balance: %w", err)
		}
		metrics.DepositCreditedNaira.Add(toFloat(conv.NetNaira))
		result = entryCredited
	}

	e.notify(ctx, user, dep)
	e.log.Info("Recorded deposit",
		"user_id", user.ID.String(), "coin", dep.Coin, "status", status,
		"amount", amount.String(), "naira", conv.NetNaira.String(), "tx_hash", txHash)

	return result, nil
}

func (e *Engine) updateDeposit(
	ctx context.Context,
	user *entities.UserAccount,
	existing *entities.Deposit,
	amount decimal.Decimal,
	conv Conversion,
	status string,
) (string, error) {
	wasCreditable := entities.IsCreditableStatus(existing.Status)
	nowCreditable := entities.IsCreditableStatus(status)

	// A late pending event after the deposit settled is stale, not a
	// regression.
	if wasCreditable && status == entities.DepositStatusPending {
		e.log.Info("Skipping stale transfer event",
			"tx_hash", existing.TxHash, "status", existing.Status, "incoming", status)
		return entrySkipped, nil
	}

	var delta decimal.Decimal
	switch {
	case nowCreditable && !wasCreditable:
		delta = conv.NetNaira
	case nowCreditable && wasCreditable:
		delta = conv.NetNaira.Sub(existing.EquivalentNaira)
	case !nowCreditable && wasCreditable:
		delta = existing.EquivalentNaira.Neg()
	}

	statusChanged := existing.Status != status

	existing.Status = status
	existing.CryptoAmount = amount
	if nowCreditable || !wasCreditable {
		existing.EquivalentNaira = conv.NetNaira
		existing.FeeNaira = conv.FeeNaira
		existing.RateUsed = conv.RateUsed
	}

	if err := e.deposits.Update(ctx, existing); err != nil {
		return "", fmt.Errorf("failed to update deposit: %w", err)
	}

	result := entryUpdated
	if !delta.IsZero() {
		if err := e.users.AddToBalance(ctx, user.ID, delta); err != nil {
			return "", fmt.Errorf("failed to adjust balance: %w", err)
		}
		if delta.IsPositive() {
			metrics.DepositCreditedNaira.Add(toFloat(delta))
		}
		result = entryCredited
	}

	if statusChanged {
		e.notify(ctx, user, existing)
	}

	e.log.Info("Reconciled deposit",
		"user_id", user.ID.String(), "tx_hash", existing.TxHash,
		"status", status, "balance_delta", delta.String())

	return result, nil
}

func (e *Engine) notify(ctx context.Context, user *entities.UserAccount, dep *entities.Deposit) {
	if !user.NotifyTransactions {
		return
	}

	var title, message, notifType string
	switch {
	case dep.Status == entities.DepositStatusFailed:
		title = "Deposit Failed"
		notifType = entities.NotificationTypeDepositFailed
		message = fmt.Sprintf("Your deposit of %s %s could not be completed.",
			dep.CryptoAmount.String(), dep.Coin)
	case entities.IsCreditableStatus(dep.Status):
		title = "Deposit Confirmed"
		notifType = entities.NotificationTypeDepositConfirmed
		message = fmt.Sprintf("Your deposit of %s %s has been confirmed. %s has been added to your balance.",
			dep.CryptoAmount.String(), dep.Coin, FormatNaira(dep.EquivalentNaira))
	default:
		title = "Deposit Pending"
		notifType = entities.NotificationTypeDepositPending
		message = fmt.Sprintf("Your deposit of %s %s is awaiting confirmation.",
			dep.CryptoAmount.String(), dep.Coin)
	}

	notification := &entities.Notification{
		ID:               uuid.New(),
		UserID:           user.ID,
		Title:            title,
		Message:          message,
		NotificationType: notifType,
		CreatedAt:        e.now(),
	}

	// Notification failures never fail reconciliation.
	if err := e.notifications.Create(ctx, notification); err != nil {
		e.log.Error("Failed to record notification",
			"user_id", user.ID.String(), "type", notifType, "error", err)
	}
}

// enrichFromProvider fetches the full transfer record when the webhook
// carried no entries. The wallet id comes from per-asset configuration, not
// the payload. Failures are logged and left alone; the event then falls
// through to the no-entries outcome and is acknowledged as ignored.
func (e *Engine) enrichFromProvider(ctx context.Context, asset entities.Asset, event *TransferEvent) {
	if e.transfers == nil || event.TransferID == "" {
		return
	}

	walletID := e.wallets[asset]
	if walletID == "" {
		e.log.Warn("No wallet configured for asset, skipping transfer detail fetch",
			"asset", string(asset), "transfer_id", event.TransferID)
		return
	}

	raw, err := e.transfers.GetTransfer(ctx, event.Coin, walletID, event.TransferID)
	if err != nil {
		e.log.Warn("Transfer detail fetch failed",
			"coin", event.Coin, "transfer_id", event.TransferID, "error", err)
		return
	}

	detail, err := ParseTransferEvent(raw)
	if err != nil {
		e.log.Warn("Transfer detail unparsable",
			"transfer_id", event.TransferID, "error", err)
		return
	}

	event.MergeDetail(detail)
}

// FormatNaira renders a naira amount with thousands separators and two
// decimal places.
func FormatNaira(d decimal.Decimal) string {
	s := d.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}

	out := "₦" + b.String() + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
