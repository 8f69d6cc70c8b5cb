package recal

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Compression selects the deflate level applied to the HDF5 summary
// tables. Level 0 disables compression.
type Compression struct {
	Level int `json:"level"`
}

func DefaultCompression() Compression {
	return Compression{Level: 4}
}

func (c Compression) String() string {
	if c.Level <= 0 {
		return "none"
	}
	return fmt.Sprintf("deflate level %d", c.Level)
}

func (c Compression) configure(plist *hdf5.PropList) error {
	if c.Level <= 0 {
		return nil
	}
	if c.Level > 9 {
		return fmt.Errorf("invalid deflate level %d", c.Level)
	}
	return plist.SetDeflate(c.Level)
}
