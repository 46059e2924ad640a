// Package logger provides structured logging for depkit using zerolog.
//
// The dependency resolver logs factory invocations and scope lifecycle at
// debug level, and the default diagnostic sink writes reports through a
// component logger obtained from this package.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Warn("dependency accessed in test", logger.Fields(logger.FieldKey, "deps.uuidKey"))
package logger
