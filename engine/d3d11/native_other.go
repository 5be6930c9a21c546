//go:build !windows

package d3d11

// NewAPI reports ErrUnsupportedPlatform: Direct3D11 only exists on windows.
func NewAPI() (API, error) {
	return nil, ErrUnsupportedPlatform
}
