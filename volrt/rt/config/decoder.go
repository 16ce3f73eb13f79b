package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Decoder is implemented by the yaml and toml stream decoders.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

// NewDecoderFunc adapts a concrete decoder constructor.
func NewDecoderFunc[T Decoder](f func(r io.Reader) T) DecoderFunc {
	return func(r io.Reader) Decoder { return f(r) }
}

// Decoders maps a lower-case file extension to its decoder.
var Decoders = map[string]DecoderFunc{
	".yaml": yamlDecoder,
	".yml":  yamlDecoder,
	".toml": NewDecoderFunc(func(r io.Reader) *toml.Decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	}),
}

var yamlDecoder = NewDecoderFunc(func(r io.Reader) *yaml.Decoder {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
})

// DecoderFor picks the decoder registered for filename's extension.
func DecoderFor(filename string) (DecoderFunc, error) {
	f, ok := Decoders[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return f, nil
}

// Read decodes v from r. An empty stream leaves v untouched.
func Read(v any, r io.Reader, f DecoderFunc) error {
	err := f(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Open decodes v from filename, choosing the decoder by extension.
func Open(v any, filename string) error {
	f, err := DecoderFor(filename)
	if err != nil {
		return err
	}
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	return Read(v, bufio.NewReader(fp), f)
}
