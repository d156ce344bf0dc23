// Package environment names the deployment environments (development,
// staging, production) and carries the current one through context.Context.
//
// Parse normalizes configuration values such as APP_ENV=prod, and the logger
// package uses the result to select its presets. Commands store the parsed
// value with WithContext so code deeper in the call chain can check
// IsProduction without reading configuration again.
package environment
