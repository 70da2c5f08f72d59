package revgraph

import (
	"bytes"
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
)

// jsonObjectWriter builds a JSON object whose fields keep the order in which
// they were appended. The first error is kept and reported by MarshalJSON.
//
//	var w jsonObjectWriter
//	w.Append("x", p.Date).Append("y", p.Value).Optional("adjusted", p.Adjusted)
//	return w.MarshalJSON()
type jsonObjectWriter struct {
	buf bytes.Buffer
	err error
}

// Append marshals value and adds it under key.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot encode %q: %w", key, err)
		return w
	}
	name, _ := json.Marshal(key)

	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(name)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
	return w
}

// Optional is Append, except that zero values are left out.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON returns the object built so far.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
