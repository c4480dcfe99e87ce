// Package config loads mentions settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults (a groups trigger on '~' and a usernames trigger on '@')
//  2. a TOML file, which may pull in other files through a top-level include key
//  3. MENTIONS_ environment variables
//
// Example file:
//
//	[logging]
//	level = "debug"
//	file = "/tmp/mentions.log"
//
//	[dropdown]
//	max_items = 8
//
//	[[triggers]]
//	prefix = "~"
//	target = "groups"
//	scrape = ["page.txt"]
//
//	[[triggers]]
//	prefix = "@"
//	target = "usernames"
//	labels = "labels.json"
//	script = "users.lua"
//
// Relative source paths resolve against the directory of the file that
// declared them.
package config
