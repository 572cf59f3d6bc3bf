package ren

// Version is the library version, stamped at release.
var Version = "0.3.0"

// BuildDate may be overridden at link time.
var BuildDate = "unknown"
