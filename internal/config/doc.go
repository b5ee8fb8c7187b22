// Package config loads inkwell configuration.
//
// Configuration is read from a TOML file and then overridden by INKWELL_*
// environment variables:
//
//	[log]
//	level = "info"
//	file = "/var/log/inkwell.log"
//
//	[normalize]
//	max_passes = 32
//
//	[spellcheck]
//	enabled = true
//	debounce = "500ms"
//	language = "en-US"
//	dictionary = "/usr/share/dict/words"
//
//	[plugins]
//	dir = "~/.config/inkwell/plugins"
//	watch = true
//
//	[store]
//	path = "inkwell.db"
//
// A missing file yields the defaults.
package config
