// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: Layered settings (defaults, TOML file, .env, environment)
//   - PromptStore: User-editable prompt templates with embedded defaults
package file
