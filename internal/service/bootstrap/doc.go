// Package bootstrap upgrades the packaging tools and installs a project's
// requirements, in that order, stopping at the first failing step.
//
// Run is the CLI entry point: it resolves settings, then hands a manifest
// path and the cache mode to a Bootstrapper. Every failure of the external
// installer surfaces as an *InstallationError carrying its exit code.
package bootstrap
