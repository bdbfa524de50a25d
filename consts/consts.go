package consts

// Version is the current release version. Overridden with ldflags on release builds.
var Version = "v0.1.0"
