package lending

import (
	"context"

	"github.com/library/backend/internal/domain/shared/valueobject"
)

// Setting keys as stored in the settings table
const (
	SettingFinePerDay      = "FINE_PER_DAY"
	SettingMaxOverdueDays  = "MAX_OVERDUE_DAYS"
	SettingCreditLimit     = "CREDIT_LIMIT"
	SettingBanDurationDays = "BAN_DURATION_DAYS"
)

// Defaults applied when a setting is missing
const (
	DefaultFinePerDay      = "2.00"
	DefaultMaxOverdueDays  = 30
	DefaultCreditLimit     = "50.00"
	DefaultBanDurationDays = 30
)

// FineSettings holds the configurable parameters of the fine and ban lifecycle
type FineSettings struct {
	FinePerDay      valueobject.Money // daily fine rate applied to new loans
	MaxOverdueDays  int               // days overdue before a member is banned
	CreditLimit     valueobject.Money // outstanding fines above this trigger a warning
	BanDurationDays int               // length of an automatic ban
}

// DefaultFineSettings returns the built-in defaults
func DefaultFineSettings() FineSettings {
	finePerDay, _ := valueobject.NewMoneyUSDFromString(DefaultFinePerDay)
	creditLimit, _ := valueobject.NewMoneyUSDFromString(DefaultCreditLimit)
	return FineSettings{
		FinePerDay:      finePerDay,
		MaxOverdueDays:  DefaultMaxOverdueDays,
		CreditLimit:     creditLimit,
		BanDurationDays: DefaultBanDurationDays,
	}
}

// SettingsProvider supplies the current fine settings.
// Implementations fall back to defaults for missing keys.
type SettingsProvider interface {
	Get(ctx context.Context) (FineSettings, error)
}
