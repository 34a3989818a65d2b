package skpmml

import (
	"io"

	"github.com/YuminosukeSato/skpmml/converter"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Convert reads a possibly compressed JSON or YAML dump from r and writes the
// PMML document to w.
func Convert(r io.Reader, w io.Writer, opts ...converter.Option) error {
	obj, err := store.DecodeReader(r, store.FormatAuto)
	if err != nil {
		return err
	}
	doc, err := converter.New(opts...).Convert(obj)
	if err != nil {
		return err
	}
	if err := pmml.Marshal(w, doc); err != nil {
		return errors.Wrap(err, "marshal PMML")
	}
	return nil
}
