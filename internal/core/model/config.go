package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"pawlock/internal/core/keycombo"
)

const (
	// MinTimer and MaxTimer bound the optional auto-exit duration.
	MinTimer = time.Minute
	MaxTimer = 24 * time.Hour

	// DefaultOpacity is the overlay backdrop opacity.
	DefaultOpacity = 0.3
)

// DefaultUnlockCombo is used when no exit key is configured.
var DefaultUnlockCombo = keycombo.Combo{
	Mods: keycombo.ModCommand | keycombo.ModOption,
	Key:  "U",
}

// InvalidConfigError reports a rejected protection configuration.
type InvalidConfigError struct {
	Reason string
}

func (err *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", err.Reason)
}

// ErrBadTimerSyntax indicates an unparseable timer descriptor.
var ErrBadTimerSyntax = errors.New("timer must use hour/minute form such as 30m, 2h or 1h30m")

// ProtectionConfig is the immutable input to one protection session.
type ProtectionConfig struct {
	UnlockCombo keycombo.Combo
	Timer       time.Duration // zero means no auto-exit
	HideTimer   bool
	Opacity     float64
	Chime       bool
}

// DefaultProtectionConfig returns the built-in defaults.
func DefaultProtectionConfig() ProtectionConfig {
	return ProtectionConfig{
		UnlockCombo: DefaultUnlockCombo,
		Opacity:     DefaultOpacity,
		Chime:       true,
	}
}

// Validate rejects out-of-range values before a session may start.
func (config ProtectionConfig) Validate() error {
	if config.UnlockCombo.Key == "" {
		return &InvalidConfigError{Reason: "unlock combination has no primary key"}
	}
	if config.Timer != 0 && (config.Timer < MinTimer || config.Timer > MaxTimer) {
		return &InvalidConfigError{Reason: "timer out of range"}
	}
	if config.Opacity < 0 || config.Opacity > 1 {
		return &InvalidConfigError{Reason: "opacity out of range"}
	}
	return nil
}

var timerPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

// ParseTimer converts a textual duration with hour and/or minute components
// ("30m", "2h", "1h30m") into a duration. A zero duration is rejected here:
// zero is the "no auto-exit" sentinel, so text that spells it out ("0m") is
// out of range rather than a way to disable the timer. Upper-bound
// enforcement is left to ProtectionConfig.Validate.
func ParseTimer(text string) (time.Duration, error) {
	groups := timerPattern.FindStringSubmatch(text)
	if groups == nil || (groups[1] == "" && groups[2] == "") {
		return 0, ErrBadTimerSyntax
	}
	var total time.Duration
	if groups[1] != "" {
		hours, err := strconv.Atoi(groups[1])
		if err != nil {
			return 0, ErrBadTimerSyntax
		}
		total += time.Duration(hours) * time.Hour
	}
	if groups[2] != "" {
		minutes, err := strconv.Atoi(groups[2])
		if err != nil {
			return 0, ErrBadTimerSyntax
		}
		total += time.Duration(minutes) * time.Minute
	}
	if total == 0 {
		return 0, &InvalidConfigError{Reason: "timer out of range"}
	}
	return total, nil
}

// FormatTimer renders a duration back into the textual form ParseTimer reads.
func FormatTimer(value time.Duration) string {
	if value <= 0 {
		return ""
	}
	hours := int(value / time.Hour)
	minutes := int(value % time.Hour / time.Minute)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
