package sim

import "github.com/mj1618/dump-hierarchy/internal/platform"

// Backend is the registry name of the simulated device.
const Backend = "sim"

func init() {
	platform.Register(Backend, func(opts platform.ProviderOptions) (*platform.Provider, error) {
		f, err := LoadFixture(opts.Fixture)
		if err != nil {
			return nil, err
		}
		return New(f).Provider(), nil
	})
}
