package pipeline

import "time"

// timeNow is a package-level variable for testability.
// Tests can replace this to control run durations.
var timeNow = time.Now
