// Package wizard provides the interactive blueprint wizard behind `init`.
//
// RunWizard asks a short series of charmbracelet/huh forms and returns a
// Result. BuildConfig turns a Result into a config.Config and WriteConfig
// writes it atomically with a descriptive header.
package wizard
