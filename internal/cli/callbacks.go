package cli

import (
	"maps"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

// builtinCallbacks can be referenced by name from a config file.
// Names already set on the config win.
var builtinCallbacks = map[string]mailer.VariableCallback{
	// userFields exposes every --field passed on the command line.
	"userFields": func(u mailer.User) any {
		fields, ok := u.(mailer.UserFields)
		if !ok {
			return nil
		}
		vars := make(mailer.Vars, len(fields))
		for k, v := range fields {
			vars[k] = v
		}
		return vars
	},
}

func withBuiltinCallbacks(callbacks map[string]mailer.VariableCallback) map[string]mailer.VariableCallback {
	merged := maps.Clone(builtinCallbacks)
	maps.Copy(merged, callbacks)
	return merged
}
