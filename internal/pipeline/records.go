package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf16"
	"unicode/utf8"
	"willamette-dining/internal/apis/fdc"
)

// Records maps menu item names to their nutrient profiles, it remembers the order
// names were first set in.
type Records struct {
	names    []string
	profiles map[string]fdc.Profile
}

func NewRecords() *Records {
	return &Records{profiles: map[string]fdc.Profile{}}
}

// Set stores the profile of a name, setting an existing name replaces its profile
// but keeps its position.
func (r *Records) Set(name string, profile fdc.Profile) {
	_, exists := r.profiles[name]
	if !exists {
		r.names = append(r.names, name)
	}
	r.profiles[name] = profile
}

func (r *Records) Get(name string) (fdc.Profile, bool) {
	profile, ok := r.profiles[name]
	return profile, ok
}

func (r *Records) Names() []string {
	return r.names
}

func (r *Records) Len() int {
	return len(r.names)
}

func encodeNoEscape(buff *bytes.Buffer, value any) error {
	encoder := json.NewEncoder(buff)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(value)
	if err != nil {
		return err
	}
	// Encode always terminates with a newline
	buff.Truncate(buff.Len() - 1)
	return nil
}

const hexDigits = "0123456789abcdef"

func writeEscapedRune(buff *bytes.Buffer, r rune) {
	buff.WriteString(`\u`)
	buff.WriteByte(hexDigits[r>>12&0xf])
	buff.WriteByte(hexDigits[r>>8&0xf])
	buff.WriteByte(hexDigits[r>>4&0xf])
	buff.WriteByte(hexDigits[r&0xf])
}

// escapeNonAscii rewrites every character outside of printable ascii as a \uXXXX
// escape, characters beyond the basic plane become a surrogate pair. Only strings
// can hold such characters in encoded json so the whole document is rewritten.
func escapeNonAscii(encoded []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(encoded))
	for len(encoded) > 0 {
		r, size := utf8.DecodeRune(encoded)
		encoded = encoded[size:]
		if r < 0x7f {
			out.WriteByte(byte(r))
			continue
		}
		if r > 0xffff {
			r1, r2 := utf16.EncodeRune(r)
			writeEscapedRune(&out, r1)
			writeEscapedRune(&out, r2)
			continue
		}
		writeEscapedRune(&out, r)
	}
	return out.Bytes()
}

// MarshalJSON writes the records as an object keyed by name, in insertion order.
// Non-ascii characters are always escaped.
func (r *Records) MarshalJSON() ([]byte, error) {
	var buff bytes.Buffer
	buff.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buff.WriteByte(',')
		}
		err := encodeNoEscape(&buff, name)
		if err != nil {
			return nil, err
		}
		buff.WriteByte(':')
		err = encodeNoEscape(&buff, r.profiles[name])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", name, err)
		}
	}
	buff.WriteByte('}')
	return escapeNonAscii(buff.Bytes()), nil
}

func (r *Records) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewBuffer(data))
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected an object, got %v", tok)
	}

	*r = *NewRecords()
	for decoder.More() {
		tok, err = decoder.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected a name, got %v", tok)
		}
		var profile fdc.Profile
		err = decoder.Decode(&profile)
		if err != nil {
			return fmt.Errorf("decode %q: %w", name, err)
		}
		r.Set(name, profile)
	}

	_, err = decoder.Token()
	return err
}

// WriteRecords replaces the file at path with the records as a JSON object indented
// by 4 spaces.
func WriteRecords(path string, records *Records) error {
	compact, err := records.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	err = json.Indent(&out, compact, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0644)
}

func ReadRecords(path string) (*Records, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records := NewRecords()
	err = records.UnmarshalJSON(contents)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
