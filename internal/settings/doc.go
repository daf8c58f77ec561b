// Package settings stores the profile toggles shown on the profile screen.
//
// # Toggles
//
// Three toggles exist: darkMode (default off), notifications (default on)
// and autoUpdate (default on). Each is kept in the store under
// "settings.<name>" as "true" or "false".
//
// # Absence
//
// A missing or malformed value reads as the default. On a platform whose
// store drops writes every toggle therefore always reads as its default.
// Reset removes the stored value so the default applies again.
package settings
