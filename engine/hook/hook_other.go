//go:build !windows

package hook

import "errors"

func arm() (func() error, error) {
	return nil, errors.ErrUnsupported
}
