package pricing

import (
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/model"
)

// CheckValidity explains why combo cannot be applied at now, or returns nil.
// Missing window bounds are open-ended.
func CheckValidity(combo *model.Combo, now time.Time) error {
	if combo == nil || !combo.Active || combo.Paused {
		return ErrComboInactive
	}
	if combo.ValidFrom != nil && now.Before(*combo.ValidFrom) {
		return ErrComboExpired
	}
	if combo.ValidUntil != nil && now.After(*combo.ValidUntil) {
		return ErrComboExpired
	}
	if combo.UsageLimit > 0 && combo.UsageCount >= combo.UsageLimit {
		return ErrComboUsageExceeded
	}
	return nil
}

func IsCurrentlyValid(combo *model.Combo, now time.Time) bool {
	return CheckValidity(combo, now) == nil
}
