// Package lifecycle holds process-wide lifecycle constants.
package lifecycle

import "time"

// DefaultTimeout bounds each start and stop hook (DB ping, migrations,
// HTTP graceful shutdown).
const DefaultTimeout = 15 * time.Second
