package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aidanlsb/sld/internal/rules"
)

// ruleList is a repeatable flag holding rules written as comma-separated
// key=value pairs.
type ruleList []rules.PrefixRule

var _ pflag.Value = (*ruleList)(nil)

func (l *ruleList) String() string {
	parts := make([]string, 0, len(*l))
	for _, r := range *l {
		parts = append(parts, formatRule(r))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (l *ruleList) Set(value string) error {
	r, err := parseRule(value)
	if err != nil {
		return err
	}
	*l = append(*l, r)
	return nil
}

func (l *ruleList) Type() string { return "rule" }

// parseRule parses "prefix=@,emoji=👤,type=person". Keys: prefix, emoji,
// type (or link_type), color, background, alpha (or background_alpha) and
// underline.
func parseRule(value string) (rules.PrefixRule, error) {
	var r rules.PrefixRule
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return r, fmt.Errorf("invalid rule field %q (expected key=value)", pair)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "prefix":
			r.Prefix = val
		case "emoji":
			r.Emoji = val
		case "type", "link_type":
			r.LinkType = val
		case "color":
			r.Color = val
		case "background":
			r.Background = val
		case "alpha", "background_alpha":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return r, fmt.Errorf("invalid alpha %q: %w", val, err)
			}
			r.BackgroundAlpha = f
		case "underline":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return r, fmt.Errorf("invalid underline %q: %w", val, err)
			}
			r.Underline = b
		default:
			return r, fmt.Errorf("unknown rule field %q", key)
		}
	}
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func formatRule(r rules.PrefixRule) string {
	s := fmt.Sprintf("prefix=%s,emoji=%s,type=%s", r.Prefix, r.Emoji, r.LinkType)
	if r.Color != "" {
		s += ",color=" + r.Color
	}
	if r.Background != "" {
		s += ",background=" + r.Background
	}
	if r.BackgroundAlpha != 0 {
		s += ",alpha=" + strconv.FormatFloat(r.BackgroundAlpha, 'g', -1, 64)
	}
	if r.Underline {
		s += ",underline=true"
	}
	return s
}
