// Package config loads lineview settings.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. Environment variables named LINEVIEW_<SETTING>, e.g. LINEVIEW_TAB_WIDTH
//
// Example config.toml:
//
//	prompt = "\u001b[1;32m$\u001b[0m "
//	continuation_prompt = "> "
//	prompt_script = "~/.config/lineview/prompt.lua"
//	tab_width = 4
//	mouse = true
//	log_level = "debug"
//	log_file = "/tmp/lineview.log"
//
// The watcher subpackage reports edits to the file so a running editor can
// reload its prompts.
package config
