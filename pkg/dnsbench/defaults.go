package dnsbench

import (
	"time"
)

const (
	// DefaultHostname is a default hostname to query.
	DefaultHostname = "example.org"

	// DefaultTransactionID is a default transaction ID of the query.
	DefaultTransactionID = 0xBABE

	// DefaultRepetitions is a default number of attempts per target.
	DefaultRepetitions = 3

	// DefaultTimeout is a default send and receive timeout of a single attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultLocalBind is a default local address of the UDP socket, any address and ephemeral port.
	DefaultLocalBind = ":0"

	// DefaultDelay is a default delay between two attempts against the same target.
	DefaultDelay = "10ms"

	// DefaultConcurrency is a default number of targets benchmarked in parallel.
	DefaultConcurrency = 1

	// DefaultRequestLogPath is a default path to the file, where the requests will be logged.
	DefaultRequestLogPath = "requests.log"

	// DefaultPlotFormat is a default format for plots.
	DefaultPlotFormat = "svg"

	// DefaultHistMin is a default minimum value for the timing histogram.
	DefaultHistMin = 100 * time.Microsecond

	// DefaultHistPrecision is a default precision for histogram.
	DefaultHistPrecision = 1
)
