package bmf

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/npillmayer/bmtext/core"
)

// maxTextureName limits the length of the texture file name.
const maxTextureName = 4096

// Decode reads a bitmap font table from r.
func Decode(r io.Reader) (*Font, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read bitmap font data")
	}
	return Parse(data)
}

// Parse decodes a bitmap font table from a byte slice.
// The returned font does not reference data.
//
// Parse either returns a font satisfying all the invariants lookup relies on,
// or an error with code core.EINVALID.
func Parse(data []byte) (*Font, error) {
	r := bytes.NewReader(data)
	f := &Font{}
	if err := binary.Read(r, binary.LittleEndian, &f.Header); err != nil {
		return nil, truncated(err, "header")
	}
	tracer().Debugf("bitmap font header = %+v", f.Header)
	if f.MetricCount < 0 {
		return nil, errFontFormat("negative metric count %d", f.MetricCount)
	}
	if err := binary.Read(r, binary.LittleEndian, &f.Index); err != nil {
		return nil, truncated(err, "first-byte index")
	}
	f.Metrics = make([]Metric, f.MetricCount)
	if err := binary.Read(r, binary.LittleEndian, f.Metrics); err != nil {
		return nil, truncated(err, "metrics")
	}
	l, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, truncated(err, "texture name length")
	}
	if l > maxTextureName || int(l) > r.Len() {
		return nil, errFontFormat("texture name length %d exceeds data", l)
	}
	name := make([]byte, l)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, truncated(err, "texture name")
	}
	if !utf8.Valid(name) {
		return nil, errFontFormat("texture name is not valid UTF-8")
	}
	f.TextureName = string(name)
	if r.Len() > 0 {
		tracer().Debugf("ignoring %d trailing bytes after texture name", r.Len())
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func truncated(err error, part string) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return core.WrapError(err, core.EINVALID, "bitmap font format: truncated %s", part)
}
