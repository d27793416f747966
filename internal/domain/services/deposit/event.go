package deposit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// flexString tolerates payload fields that arrive as strings, numbers or
// booleans. Anything else decodes to empty instead of failing the event.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}
	var boolean bool
	if err := json.Unmarshal(b, &boolean); err == nil {
		*s = flexString(strconv.FormatBool(boolean))
		return nil
	}
	*s = ""
	return nil
}

// flexAmount tolerates amounts that arrive as JSON numbers or numeric
// strings. Missing or malformed values decode as absent.
type flexAmount struct {
	value decimal.Decimal
	ok    bool
}

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	a.ok = false
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		if d, derr := decimal.NewFromString(num.String()); derr == nil {
			a.value = d
			a.ok = true
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil && str != "" {
		if d, derr := decimal.NewFromString(str); derr == nil {
			a.value = d
			a.ok = true
		}
	}
	return nil
}

type entryPayload struct {
	Address     flexString `json:"address"`
	ToAddress   flexString `json:"toAddress"`
	Value       flexAmount `json:"value"`
	ValueString flexAmount `json:"valueString"`
	Amount      flexAmount `json:"amount"`
}

// flexEntries decodes a JSON array of entries, tolerating a wrong-typed
// field by decoding to nil.
type flexEntries []entryPayload

func (e *flexEntries) UnmarshalJSON(b []byte) error {
	var entries []entryPayload
	if err := json.Unmarshal(b, &entries); err != nil {
		*e = nil
		return nil
	}
	*e = entries
	return nil
}

// transferPayload is the nested transfer object some webhook deliveries
// carry. Detail fetches return the same shape at the top level.
type transferPayload struct {
	ID              flexString  `json:"id"`
	Coin            flexString  `json:"coin"`
	TxID            flexString  `json:"txid"`
	TransactionHash flexString  `json:"transactionHash"`
	State           flexString  `json:"state"`
	Status          flexString  `json:"status"`
	Date            flexString  `json:"date"`
	Value           flexAmount  `json:"value"`
	ValueString     flexAmount  `json:"valueString"`
	Amount          flexAmount  `json:"amount"`
	Address         flexString  `json:"address"`
	ToAddress       flexString  `json:"toAddress"`
	Entries         flexEntries `json:"entries"`
	Outputs         flexEntries `json:"outputs"`
	Recipients      flexEntries `json:"recipients"`
}

// transferField decodes the transfer slot, which arrives either as a bare
// transfer id string or as an embedded transfer object.
type transferField struct {
	id  flexString
	obj *transferPayload
}

func (t *transferField) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj transferPayload
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			t.obj = &obj
		}
		return nil
	}
	return t.id.UnmarshalJSON(b)
}

type eventPayload struct {
	Type        flexString    `json:"type"`
	Wallet      flexString    `json:"wallet"`
	WalletID    flexString    `json:"walletId"`
	Coin        flexString    `json:"coin"`
	Transfer    transferField `json:"transfer"`
	TransferID  flexString    `json:"transferId"`
	TxID        flexString    `json:"txid"`
	Hash        flexString    `json:"hash"`
	State       flexString    `json:"state"`
	Status      flexString    `json:"status"`
	Secret      flexString    `json:"secret"`
	Date        flexString    `json:"date"`
	Value       flexAmount    `json:"value"`
	ValueString flexAmount    `json:"valueString"`
	Amount      flexAmount    `json:"amount"`
	Address     flexString    `json:"address"`
	ToAddress   flexString    `json:"toAddress"`
	Entries     flexEntries   `json:"entries"`
	Outputs     flexEntries   `json:"outputs"`
	Recipients  flexEntries   `json:"recipients"`
}

// Entry is one credited output of a transfer: the receiving address and the
// raw on-chain amount in base units.
type Entry struct {
	Address string
	Value   decimal.Decimal
}

// TransferEvent is a provider transfer notification reduced to the fields
// reconciliation needs. All fields are best-effort: payloads vary between
// webhook deliveries and transfer detail fetches.
type TransferEvent struct {
	Type       string
	WalletID   string
	Coin       string
	TransferID string
	TxHash     string
	State      string
	BodySecret string
	Date       time.Time
	HasDate    bool

	entries    []entryPayload
	outputs    []entryPayload
	recipients []entryPayload
	toAddress  string
	value      flexAmount
}

// ParseTransferEvent decodes a transfer notification. It only fails when the
// body is not a JSON object; individual fields of unexpected type are
// dropped rather than rejected.
func ParseTransferEvent(data []byte) (*TransferEvent, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	tr := p.Transfer.obj
	if tr == nil {
		tr = &transferPayload{}
	}

	event := &TransferEvent{
		Type:       string(p.Type),
		WalletID:   firstNonEmpty(string(p.WalletID), string(p.Wallet)),
		Coin:       firstNonEmpty(string(p.Coin), string(tr.Coin)),
		TransferID: firstNonEmpty(string(p.Transfer.id), string(tr.ID), string(p.TransferID)),
		TxHash:     firstNonEmpty(string(tr.TxID), string(tr.TransactionHash), string(p.TxID), string(p.Hash)),
		State:      firstNonEmpty(string(tr.State), string(tr.Status), string(p.State), string(p.Status)),
		BodySecret: string(p.Secret),
		entries:    firstEntries(tr.Entries, p.Entries),
		outputs:    firstEntries(tr.Outputs, p.Outputs),
		recipients: firstEntries(tr.Recipients, p.Recipients),
		toAddress: firstNonEmpty(
			string(tr.ToAddress), string(tr.Address), string(p.Address), string(p.ToAddress)),
	}

	for _, v := range []flexAmount{tr.Value, tr.ValueString, tr.Amount, p.Value, p.ValueString, p.Amount} {
		if v.ok {
			event.value = v
			break
		}
	}

	if ts, err := time.Parse(time.RFC3339, firstNonEmpty(string(tr.Date), string(p.Date))); err == nil {
		event.Date = ts
		event.HasDate = true
	}

	return event, nil
}

// DepositEntries extracts the credited outputs of the transfer. Sources are
// tried in order: entries, then outputs, then recipients, and finally the
// event-level destination address with the event-level value. An entry needs
// a non-empty address; a missing or null value is kept as a zero amount, and
// negative change entries are dropped.
func (e *TransferEvent) DepositEntries() []Entry {
	for _, source := range [][]entryPayload{e.entries, e.outputs, e.recipients} {
		if extracted := extractEntries(source); len(extracted) > 0 {
			return extracted
		}
	}

	if e.toAddress != "" {
		value := decimal.Zero
		if e.value.ok {
			value = e.value.value
		}
		if !value.IsNegative() {
			return []Entry{{Address: e.toAddress, Value: value}}
		}
	}

	return nil
}

// MergeDetail overlays a fetched transfer record onto the webhook event.
// Fetched fields win wherever they are present.
func (e *TransferEvent) MergeDetail(detail *TransferEvent) {
	if detail == nil {
		return
	}
	if detail.Coin != "" {
		e.Coin = detail.Coin
	}
	if detail.TxHash != "" {
		e.TxHash = detail.TxHash
	}
	if detail.State != "" {
		e.State = detail.State
	}
	if detail.TransferID != "" {
		e.TransferID = detail.TransferID
	}
	if detail.HasDate {
		e.Date = detail.Date
		e.HasDate = true
	}
	if len(detail.entries) > 0 {
		e.entries = detail.entries
	}
	if len(detail.outputs) > 0 {
		e.outputs = detail.outputs
	}
	if len(detail.recipients) > 0 {
		e.recipients = detail.recipients
	}
	if detail.toAddress != "" {
		e.toAddress = detail.toAddress
	}
	if detail.value.ok {
		e.value = detail.value
	}
}

// Reference derives a stable deposit reference: the transfer ID when
// present, else a prefix of the transaction hash, else a timestamp.
func (e *TransferEvent) Reference(now time.Time) string {
	if e.TransferID != "" {
		return e.TransferID
	}
	if e.TxHash != "" {
		hash := e.TxHash
		if len(hash) > 10 {
			hash = hash[:10]
		}
		return "TX_" + hash
	}
	return "TX_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// CreatedAt returns the event timestamp when the payload carried a valid
// date, and now otherwise.
func (e *TransferEvent) CreatedAt(now time.Time) time.Time {
	if e.HasDate {
		return e.Date
	}
	return now
}

func extractEntries(source []entryPayload) []Entry {
	var out []Entry
	for _, entry := range source {
		address := firstNonEmpty(string(entry.Address), string(entry.ToAddress))
		if address == "" {
			continue
		}

		value := decimal.Zero
		switch {
		case entry.Value.ok:
			value = entry.Value.value
		case entry.ValueString.ok:
			value = entry.ValueString.value
		case entry.Amount.ok:
			value = entry.Amount.value
		}

		if value.IsNegative() {
			continue
		}

		out = append(out, Entry{Address: address, Value: value})
	}
	return out
}

func firstEntries(sources ...flexEntries) []entryPayload {
	for _, s := range sources {
		if len(s) > 0 {
			return s
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
