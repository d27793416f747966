package deposit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransferEvent_BasicFields(t *testing.T) {
	body := `{
		"type": "transfer",
		"wallet": "w1",
		"coin": "tbtc4",
		"transfer": "tr-123",
		"txid": "abcdef1234567890",
		"state": "confirmed",
		"secret": "s3cret",
		"date": "2026-08-30T12:00:00Z"
	}`

	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "transfer", event.Type)
	assert.Equal(t, "w1", event.WalletID)
	assert.Equal(t, "tbtc4", event.Coin)
	assert.Equal(t, "tr-123", event.TransferID)
	assert.Equal(t, "abcdef1234567890", event.TxHash)
	assert.Equal(t, "confirmed", event.State)
	assert.Equal(t, "s3cret", event.BodySecret)
	assert.True(t, event.HasDate)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), event.Date)
}

func TestParseTransferEvent_NestedTransferObject(t *testing.T) {
	body := `{
		"coin": "tbtc",
		"transfer": {
			"id": "tr-55",
			"txid": "abc123",
			"state": "confirmed",
			"date": "2026-08-30T12:00:00Z",
			"entries": [{"address": "1A2b-addr", "value": 100000000}]
		}
	}`

	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "tbtc", event.Coin)
	assert.Equal(t, "tr-55", event.TransferID)
	assert.Equal(t, "abc123", event.TxHash)
	assert.Equal(t, "confirmed", event.State)
	assert.True(t, event.HasDate)

	entries := event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "1A2b-addr", entries[0].Address)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromInt(100000000)))
}

func TestParseTransferEvent_TransferFieldsWinOverTopLevel(t *testing.T) {
	body := `{
		"coin": "top-coin",
		"txid": "top-hash",
		"state": "pending",
		"transfer": {
			"coin": "nested-coin",
			"transactionHash": "nested-hash",
			"state": "confirmed"
		}
	}`

	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	// Top-level coin wins; transfer-level txid and state win.
	assert.Equal(t, "top-coin", event.Coin)
	assert.Equal(t, "nested-hash", event.TxHash)
	assert.Equal(t, "confirmed", event.State)
}

func TestParseTransferEvent_WrongTypedFieldsAreDropped(t *testing.T) {
	body := `{
		"coin": 42,
		"state": true,
		"txid": {"nested": "object"},
		"entries": "not-an-array",
		"value": "bogus"
	}`

	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "42", event.Coin)
	assert.Equal(t, "true", event.State)
	assert.Empty(t, event.TxHash)
	assert.Empty(t, event.DepositEntries())
}

func TestParseTransferEvent_InvalidJSON(t *testing.T) {
	_, err := ParseTransferEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestDepositEntries_PrefersEntries(t *testing.T) {
	body := `{
		"entries": [
			{"address": "addr-in", "value": -50000},
			{"address": "addr-out", "value": 50000}
		],
		"outputs": [{"address": "ignored", "value": 1}]
	}`

	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	entries := event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "addr-out", entries[0].Address)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromInt(50000)))
}

func TestDepositEntries_FallsBackToOutputsThenRecipients(t *testing.T) {
	body := `{
		"outputs": [{"address": "out-addr", "valueString": "123456"}]
	}`
	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)
	entries := event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "out-addr", entries[0].Address)

	body = `{
		"recipients": [{"address": "rcpt-addr", "amount": 777}]
	}`
	event, err = ParseTransferEvent([]byte(body))
	require.NoError(t, err)
	entries = event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "rcpt-addr", entries[0].Address)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromInt(777)))
}

func TestDepositEntries_ToAddressFallback(t *testing.T) {
	body := `{"toAddress": "solo-addr", "value": 900}`
	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	entries := event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "solo-addr", entries[0].Address)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromInt(900)))
}

func TestDepositEntries_AddressWithoutValueKeepsZeroAmount(t *testing.T) {
	body := `{"entries": [{"address": "addr-null", "value": null}]}`
	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)

	entries := event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "addr-null", entries[0].Address)
	assert.True(t, entries[0].Value.IsZero())

	// Same for the single-destination fallback.
	event, err = ParseTransferEvent([]byte(`{"toAddress": "addr-no-value"}`))
	require.NoError(t, err)
	entries = event.DepositEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "addr-no-value", entries[0].Address)
	assert.True(t, entries[0].Value.IsZero())
}

func TestDepositEntries_EmptyWhenNothingUsable(t *testing.T) {
	body := `{"state": "confirmed", "entries": [{"value": 500}]}`
	event, err := ParseTransferEvent([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, event.DepositEntries())
}

func TestReference_Priority(t *testing.T) {
	now := time.UnixMilli(1756700000000)

	event := &TransferEvent{TransferID: "tr-1", TxHash: "abcdef1234567890"}
	assert.Equal(t, "tr-1", event.Reference(now))

	event = &TransferEvent{TxHash: "abcdef1234567890"}
	assert.Equal(t, "TX_abcdef1234", event.Reference(now))

	event = &TransferEvent{TxHash: "short"}
	assert.Equal(t, "TX_short", event.Reference(now))

	event = &TransferEvent{}
	assert.Equal(t, "TX_1756700000000", event.Reference(now))
}

func TestCreatedAt(t *testing.T) {
	now := time.Now()
	eventTime := now.Add(-2 * time.Hour)

	event := &TransferEvent{Date: eventTime, HasDate: true}
	assert.Equal(t, eventTime, event.CreatedAt(now))

	event = &TransferEvent{}
	assert.Equal(t, now, event.CreatedAt(now))
}

func TestMergeDetail(t *testing.T) {
	webhook, err := ParseTransferEvent([]byte(`{
		"coin": "tbtc4", "wallet": "w1", "transfer": "tr-1", "state": "unconfirmed"
	}`))
	require.NoError(t, err)

	detail, err := ParseTransferEvent([]byte(`{
		"state": "confirmed",
		"txid": "deadbeef",
		"entries": [{"address": "addr", "value": 100000000}]
	}`))
	require.NoError(t, err)

	webhook.MergeDetail(detail)

	assert.Equal(t, "confirmed", webhook.State)
	assert.Equal(t, "deadbeef", webhook.TxHash)
	assert.Equal(t, "tbtc4", webhook.Coin)
	require.Len(t, webhook.DepositEntries(), 1)
}
