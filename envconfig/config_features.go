package envconfig

import "runtime"

// =============================================================================
// Codec defaults
// =============================================================================

var (
	// JPEGQuality is the quality used when a request names none.
	JPEGQuality = Uint("IMAGEWRAPPER_JPEG_QUALITY", 85)

	// WebPQuality is the quality used when a request names none. 100 is lossless.
	WebPQuality = Uint("IMAGEWRAPPER_WEBP_QUALITY", 90)

	// MaxPixels bounds decoded image size. 0 disables the limit.
	MaxPixels = Uint64("IMAGEWRAPPER_MAX_PIXELS", 1<<28)
)

// =============================================================================
// Parallelism and limits
// =============================================================================

var (
	// MaxUpload bounds request bodies accepted by the server, in bytes.
	MaxUpload = Uint64("IMAGEWRAPPER_MAX_UPLOAD", 64<<20)
)

// NumWorkers returns the number of images converted in parallel.
// Configurable via IMAGEWRAPPER_NUM_WORKERS. Default: number of CPUs.
func NumWorkers() int {
	n := Uint("IMAGEWRAPPER_NUM_WORKERS", 0)()
	if n == 0 {
		return runtime.NumCPU()
	}
	return int(n)
}

// =============================================================================
// Command line defaults
// =============================================================================

var (
	// OutputDir is where convert writes files when no directory is given.
	OutputDir = String("IMAGEWRAPPER_OUTPUT_DIR")

	// Overwrite lets convert replace existing files without --force.
	Overwrite = Bool("IMAGEWRAPPER_OVERWRITE")
)
