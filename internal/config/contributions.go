package config

import "github.com/aidanlsb/sld/internal/rules"

// Contributor names, in contribution order.
const (
	ContribDefaults = "defaults"
	ContribGlobal   = "global"
	ContribVault    = "vault"
	ContribFlags    = "flags"
)

// Contributions registers the built-in, global and vault rules on r in that
// order. The defaults are withdrawn when the global config disables them.
// Either config may be nil.
func Contributions(r *rules.Resolver, global *Config, vault *VaultConfig) {
	if global.DefaultsEnabled() {
		r.Contribute(ContribDefaults, rules.Defaults())
	} else {
		r.Withdraw(ContribDefaults)
	}

	var g, v []rules.PrefixRule
	if global != nil {
		g = global.Rules
	}
	if vault != nil {
		v = vault.Rules
	}
	r.Contribute(ContribGlobal, g)
	r.Contribute(ContribVault, v)
}

// Resolve builds a resolver from both configs plus any extra rules given on
// the command line, and returns the merged set.
func Resolve(global *Config, vault *VaultConfig, extra []rules.PrefixRule) *rules.Set {
	r := rules.NewResolver()
	Contributions(r, global, vault)
	if len(extra) > 0 {
		r.Contribute(ContribFlags, extra)
	}
	return r.Resolve()
}
