package service

import "github.com/iyhunko/magical-emporium/internal/imaging"

// SetConverter replaces the image conversion step.
func SetConverter(ps *ProductService, convert func(src, dst string, opts imaging.Options) (string, error)) {
	ps.convert = convert
}
