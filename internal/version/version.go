package version

// Version is the release of the domain-weaver binary
var Version = "0.3.0"
