//go:build !windows && !linux && !darwin

package system

func newPlatform() Platform {
	return Noop()
}
