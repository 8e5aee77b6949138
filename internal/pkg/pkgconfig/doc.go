// Package pkgconfig provides a small abstraction for reading configuration
// values, plus the startup lock that pins logging-critical settings.
//
// Business code depends on the Config interface so it does not care whether
// values come from a file, the environment, or the locked layer. The locked
// layer (EnforceLoggingDefaults) sits above every other source: the schema
// format, service identity, and masking toggle it injects cannot be shadowed
// by later-loaded configuration or a file reload.
package pkgconfig
