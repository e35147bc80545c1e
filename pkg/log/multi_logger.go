package log

// MultiLogger fans each event out to its loggers in order.
type MultiLogger []Logger

// NewMultiLogger combines loggers, typically a SlogAdapter for the console
// and a FileLogger for capture. Nil and no-op entries are dropped and
// nested MultiLoggers are flattened. With nothing left the result is a
// NoopLogger; with a single logger it is that logger.
func NewMultiLogger(loggers ...Logger) Logger {
	var m MultiLogger
	for _, l := range loggers {
		switch l := l.(type) {
		case nil, NoopLogger:
		case MultiLogger:
			m = append(m, l...)
		default:
			m = append(m, l)
		}
	}

	switch len(m) {
	case 0:
		return NoopLogger{}
	case 1:
		return m[0]
	}
	return m
}

// Log sends the event to every logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}
