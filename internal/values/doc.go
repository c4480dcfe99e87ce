// Package values supplies the candidate value sets the autocomplete engine
// completes against.
//
// Values can come from inline configuration, from scraping page text for
// existing ~group and @user tokens, from a persisted label file, or from a
// sandboxed Lua script. Build combines the sources named in a
// config.TriggerSpec, normalizes the result, and returns a
// trigger.Registry. A Watcher rebuilds the registry when source files
// change.
package values
