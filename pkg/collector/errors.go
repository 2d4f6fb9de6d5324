package collector

import "fmt"

func errUnsupported(mimeType string) error {
	return fmt.Errorf("unsupported media type %q", mimeType)
}

func errTooSmall(width, height int) error {
	return fmt.Errorf("image is %dx%d, must exceed %dx%d", width, height, MinDimension, MinDimension)
}
