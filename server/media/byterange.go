package media

import (
	"errors"
	"regexp"
	"strconv"
)

var ErrInvalidRange = errors.New("Invalid range")

// Unanchored. "bytes=0-99, 200-299" is served as its first range.
var rangeRegex = regexp.MustCompile(`bytes=(\d*)-(\d*)`)

// ByteRange is an inclusive range of bytes within a file
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a single-range HTTP Range header against a file of the given size.
// A missing start means 0, and a missing end means the last byte of the file.
// Ranges that extend beyond the end of the file are rejected rather than clipped.
func ParseRange(header string, size int64) (ByteRange, error) {
	m := rangeRegex.FindStringSubmatch(header)
	if m == nil {
		return ByteRange{}, ErrInvalidRange
	}
	r := ByteRange{Start: 0, End: size - 1}
	var err error
	if m[1] != "" {
		if r.Start, err = strconv.ParseInt(m[1], 10, 64); err != nil {
			return ByteRange{}, ErrInvalidRange
		}
	}
	if m[2] != "" {
		if r.End, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return ByteRange{}, ErrInvalidRange
		}
	}
	if r.Start > r.End || r.End >= size {
		return ByteRange{}, ErrInvalidRange
	}
	return r, nil
}
