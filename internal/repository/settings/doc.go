// Package settings persists operator changes to the guard settings.
//
// The FileRepository stores and loads a settings snapshot as JSON on disk and
// exposes a Repository interface that the server service depends on. Only
// settings are persisted; alerts never are.
package settings
