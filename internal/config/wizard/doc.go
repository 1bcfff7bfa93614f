// Package wizard provides an interactive configuration wizard for tcstack.
//
// RunWizard walks the user through a few charmbracelet/huh forms and returns
// a WizardResult. BuildConfig turns the answers into a config.Config, and
// WriteConfig writes tcstack.yaml with a short header.
package wizard
