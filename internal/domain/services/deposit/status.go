package deposit

import (
	"strings"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

type statusRule struct {
	substrings []string
	status     string
}

// Rule order matters: "unconfirmed" contains "confirmed", so it must match
// before the confirmed rule.
var statusRules = []statusRule{
	{[]string{"unconfirmed", "unconfirm"}, entities.DepositStatusPending},
	{[]string{"pending"}, entities.DepositStatusPending},
	{[]string{"complete"}, entities.DepositStatusCompleted},
	{[]string{"confirmed"}, entities.DepositStatusConfirmed},
	{[]string{"failed", "rejected"}, entities.DepositStatusFailed},
}

// NormalizeStatus maps a provider transfer state onto the deposit status
// set. Unknown states normalize to pending.
func NormalizeStatus(state string) string {
	normalized := strings.ToLower(strings.TrimSpace(state))

	for _, rule := range statusRules {
		for _, sub := range rule.substrings {
			if strings.Contains(normalized, sub) {
				return rule.status
			}
		}
	}

	return entities.DepositStatusPending
}
