package httpapi

import "time"

// now is a package-level indirection over time.Now so tests can freeze it.
var now = time.Now
