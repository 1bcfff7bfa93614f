// Package helm installs and upgrades charts through the Helm v3 SDK.
//
// Releases are always applied atomically: a failed install is uninstalled
// and a failed upgrade is rolled back to the last good revision, with the
// objects created by the failed attempt cleaned up. Each namespace gets its
// own action configuration backed by Helm's secret storage driver.
package helm
