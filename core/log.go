package core

import "github.com/rs/zerolog"

// Log is the logging surface engine components write to: operation
// rejections at debug, completed liquidations at info, notification
// delivery failures at warn. Satisfied by *zerolog.Logger.
type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
