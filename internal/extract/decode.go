package extract

import (
	"encoding/json"
	"iter"
)

// Decode parses a sanitized block as strict JSON. Anything json.Valid rejects
// fails, including trailing data after the object; a valid top-level value
// that is not an object fails with ErrNotObject.
func Decode(block string) (*Object, error) {
	data := []byte(block)
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = ErrInvalidJSON
		}
		return nil, &DecodeError{Block: block, Cause: err}
	}

	obj := NewObject()
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, &DecodeError{Block: block, Cause: err}
	}
	return obj, nil
}

// Objects runs the whole extraction on text: find blocks, sanitize, decode.
// Each block yields either an object or a *DecodeError; a bad block never
// stops the sequence.
func Objects(text string) iter.Seq2[*Object, error] {
	return func(yield func(*Object, error) bool) {
		for b := range Blocks(text) {
			obj, err := Decode(Sanitize(b.Text))
			if !yield(obj, err) {
				return
			}
		}
	}
}
