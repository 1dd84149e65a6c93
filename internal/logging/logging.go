// Package logging contains helpers to write leveled messages to the shared logger.
package logging

import "log"

// PrintlnInfo prints the given value with the INFO level.
func PrintlnInfo(logger *log.Logger, v interface{}) {
	logger.Println("[INFO]", v)
}

// PrintlnWarn prints the given value with the WARN level.
func PrintlnWarn(logger *log.Logger, v interface{}) {
	logger.Println("[WARN]", v)
}

// PrintlnError prints the given value with the ERROR level.
func PrintlnError(logger *log.Logger, v interface{}) {
	logger.Println("[ERROR]", v)
}
