package platform

import "fmt"

// ScreenshotOptions controls screenshot capture.
type ScreenshotOptions struct {
	Quality int     // JPEG quality 1-100
	Scale   float64 // Scale factor in (0, 1]; 1 keeps the native resolution
}

// Normalize clamps the options into their valid ranges.
func (o ScreenshotOptions) Normalize() ScreenshotOptions {
	if o.Quality < 1 {
		o.Quality = 1
	}
	if o.Quality > 100 {
		o.Quality = 100
	}
	if o.Scale <= 0 || o.Scale > 1 {
		o.Scale = 1
	}
	return o
}

// Validate reports whether the options are within range.
func (o ScreenshotOptions) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", o.Quality)
	}
	if o.Scale < 0.1 || o.Scale > 1 {
		return fmt.Errorf("scale must be between 0.1 and 1.0, got %g", o.Scale)
	}
	return nil
}

// ProviderOptions are passed to a backend constructor.
type ProviderOptions struct {
	// Fixture is a backend-specific description of the device, e.g. the
	// path of a sim fixture file. Empty selects the backend's default.
	Fixture string
}
