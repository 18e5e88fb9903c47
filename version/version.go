package version

// Version is set at build time with -ldflags "-X github.com/7blacky7/imagewrapper/version.Version=...".
var Version string = "0.0.0"
