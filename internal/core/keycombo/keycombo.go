// Package keycombo parses and matches keyboard unlock combinations.
package keycombo

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a bit set of modifier keys.
type Modifier uint8

const (
	ModCommand Modifier = 1 << iota
	ModOption
	ModControl
	ModShift
)

// Combo is an immutable modifier set plus exactly one primary key.
type Combo struct {
	Mods Modifier
	Key  string
}

// ErrNoPrimaryKey indicates the descriptor contained only modifiers.
var ErrNoPrimaryKey = errors.New("no primary key in combination")

// ErrMultiplePrimaryKeys indicates more than one non-modifier token.
var ErrMultiplePrimaryKeys = errors.New("multiple primary keys in combination")

// UnknownTokenError reports a token that is neither a modifier nor a key.
type UnknownTokenError struct {
	Token string
}

func (err *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token %q in combination", err.Token)
}

var modifierAliases = map[string]Modifier{
	"cmd":     ModCommand,
	"command": ModCommand,
	"option":  ModOption,
	"opt":     ModOption,
	"alt":     ModOption,
	"ctrl":    ModControl,
	"control": ModControl,
	"shift":   ModShift,
}

var keyAliases = map[string]string{
	"esc":        "Escape",
	"enter":      "Return",
	"del":        "Delete",
	"arrowup":    "Up",
	"arrowdown":  "Down",
	"arrowleft":  "Left",
	"arrowright": "Right",
}

// primaryKeys is the recognized key vocabulary keyed by lowercase name.
var primaryKeys = buildPrimaryKeys()

func buildPrimaryKeys() map[string]string {
	keys := map[string]string{}
	for letter := 'A'; letter <= 'Z'; letter++ {
		keys[strings.ToLower(string(letter))] = string(letter)
	}
	for digit := '0'; digit <= '9'; digit++ {
		keys[string(digit)] = string(digit)
	}
	for number := 1; number <= 12; number++ {
		name := fmt.Sprintf("F%d", number)
		keys[strings.ToLower(name)] = name
	}
	for _, name := range []string{"Escape", "Return", "Tab", "Space", "Delete", "Up", "Down", "Left", "Right"} {
		keys[strings.ToLower(name)] = name
	}
	return keys
}

// Parse converts a textual descriptor such as "Cmd+Option+U" into a Combo.
// Tokens are matched case-insensitively; modifier order and duplicates are
// irrelevant.
func Parse(text string) (Combo, error) {
	var combo Combo
	for _, rawToken := range strings.Split(text, "+") {
		token := strings.ToLower(strings.TrimSpace(rawToken))
		if token == "" {
			continue
		}
		if modifier, ok := modifierAliases[token]; ok {
			combo.Mods |= modifier
			continue
		}
		if alias, ok := keyAliases[token]; ok {
			token = strings.ToLower(alias)
		}
		key, ok := primaryKeys[token]
		if !ok {
			return Combo{}, &UnknownTokenError{Token: strings.TrimSpace(rawToken)}
		}
		if combo.Key != "" {
			return Combo{}, ErrMultiplePrimaryKeys
		}
		combo.Key = key
	}
	if combo.Key == "" {
		return Combo{}, ErrNoPrimaryKey
	}
	return combo, nil
}

// String renders the canonical descriptor form.
func (combo Combo) String() string {
	var parts []string
	if combo.Mods&ModCommand != 0 {
		parts = append(parts, "Cmd")
	}
	if combo.Mods&ModOption != 0 {
		parts = append(parts, "Option")
	}
	if combo.Mods&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if combo.Mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	parts = append(parts, combo.Key)
	return strings.Join(parts, "+")
}

// Warnings reports non-fatal problems with the combination. A bare key is
// legal but far too easy to trigger by accident.
func (combo Combo) Warnings() []string {
	var warnings []string
	if combo.Mods == 0 {
		warnings = append(warnings, "combination has no modifier keys and may trigger accidentally")
	}
	return warnings
}

// Matches reports whether a key-down with the given pressed modifiers and
// primary key completes this combination. The modifier set must be equal,
// never a subset or superset.
func (combo Combo) Matches(mods Modifier, key string) bool {
	return combo.Key != "" && mods == combo.Mods && key == combo.Key
}
