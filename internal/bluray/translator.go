package bluray

import (
	"fmt"
	"strings"
)

// AliasButton maps a host button name onto the player's vocabulary.
// Names without an alias pass through unchanged.
func AliasButton(button string) string {
	if alias, ok := buttonAliases[strings.ToUpper(button)]; ok {
		return alias
	}
	return button
}

// Translate resolves a button name to the IRCC code the player reported for it
func (t CommandTable) Translate(button string) (string, error) {
	if len(t) == 0 {
		return "", fmt.Errorf("%w: command list not initialized", ErrUntranslatableButton)
	}

	name := strings.ToUpper(AliasButton(button))
	code, ok := t[name]
	if !ok || code == "" {
		return "", fmt.Errorf("%w: could not find mapping for button %s/%s", ErrUntranslatableButton, button, name)
	}
	return code, nil
}
