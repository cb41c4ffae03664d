// Package log builds zerolog.Logger instances for injection into
// component constructors. It holds no package-level state; New
// constructs a base logger from Config and the WithXxx helpers derive
// tagged child loggers from it.
package log
