// Package rules defines prefix rules and the merged rule set that drives link
// classification and alias replacement.
package rules

import (
	"errors"
	"fmt"

	"github.com/rivo/uniseg"
)

// ErrInvalidRule is returned (wrapped) by Validate.
var ErrInvalidRule = errors.New("invalid prefix rule")

const (
	maxPrefixGraphemes = 1
	maxEmojiGraphemes  = 2
)

// PrefixRule maps a short trigger prefix to a link classification and an
// optional replacement string. Prefix is the identity key.
type PrefixRule struct {
	// Prefix is the trigger typed at the start of an alias (0-1 grapheme).
	Prefix string `toml:"prefix" yaml:"prefix" json:"prefix"`

	// Emoji replaces Prefix once a link is completed or left (0-2 graphemes).
	Emoji string `toml:"emoji" yaml:"emoji" json:"emoji"`

	// LinkType is written to the classification attribute of matched links.
	LinkType string `toml:"link_type" yaml:"link_type" json:"link_type"`

	Color           string  `toml:"color,omitempty" yaml:"color,omitempty" json:"color,omitempty"`
	Background      string  `toml:"background,omitempty" yaml:"background,omitempty" json:"background,omitempty"`
	BackgroundAlpha float64 `toml:"background_alpha,omitempty" yaml:"background_alpha,omitempty" json:"background_alpha,omitempty"`
	Underline       bool    `toml:"underline,omitempty" yaml:"underline,omitempty" json:"underline,omitempty"`
}

// Validate checks the length limits on Prefix and Emoji and the alpha range.
// Lengths are counted in grapheme clusters so a flag or skin-toned emoji
// counts as one.
func (r PrefixRule) Validate() error {
	if n := uniseg.GraphemeClusterCount(r.Prefix); n > maxPrefixGraphemes {
		return fmt.Errorf("%w: prefix %q has %d characters, at most %d allowed", ErrInvalidRule, r.Prefix, n, maxPrefixGraphemes)
	}
	if n := uniseg.GraphemeClusterCount(r.Emoji); n > maxEmojiGraphemes {
		return fmt.Errorf("%w: emoji %q has %d characters, at most %d allowed", ErrInvalidRule, r.Emoji, n, maxEmojiGraphemes)
	}
	if r.BackgroundAlpha < 0 || r.BackgroundAlpha > 1 {
		return fmt.Errorf("%w: background_alpha %v out of range [0, 1]", ErrInvalidRule, r.BackgroundAlpha)
	}
	return nil
}

// ValidateAll validates every rule and reports the first failure with its index.
func ValidateAll(list []PrefixRule) error {
	for i, r := range list {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return nil
}

// Defaults returns the built-in rules contributed ahead of any user config.
func Defaults() []PrefixRule {
	return []PrefixRule{
		{Prefix: "@", Emoji: "👤", LinkType: "person", Color: "#A78BFA", Underline: true},
		{Prefix: ">", Emoji: "📍", LinkType: "location", Color: "#34D399"},
		{Prefix: "#", Emoji: "🏷️", LinkType: "topic", Color: "#60A5FA"},
		{Prefix: "!", Emoji: "💡", LinkType: "idea", Color: "#FBBF24", Background: "#FBBF24", BackgroundAlpha: 0.2},
	}
}
