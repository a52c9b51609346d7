// Package codec serializes a sequence of records to bytes.
//
// The format is picked from the file name with ForFile:
//
//	schedules.plist       XML property list (via JSON, dates as strings)
//	schedules.json        indented JSON
//	schedules.yaml        YAML
//	schedules.msgpack     MessagePack
//	schedules.toon        TOON
//	schedules.json.zst    any of the above, compressed (.gz, .zst, .br)
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"
	ugorji "github.com/ugorji/go/codec"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// Codec converts values to and from a byte encoding
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(d []byte, v any) error
}

var (
	JSON    Codec = jsonCodec{}
	Plist   Codec = plistCodec{}
	YAML    Codec = yamlCodec{}
	Msgpack Codec = msgpackCodec{}
	Toon    Codec = toonCodec{}
)

var byExt = map[string]Codec{
	".json":    JSON,
	".plist":   Plist,
	".yaml":    YAML,
	".yml":     YAML,
	".msgpack": Msgpack,
	".mp":      Msgpack,
	".toon":    Toon,
}

// ForFile returns a codec based on file extension(s) of name.
// A compression extension (.gz, .zst, .zstd, .br) can follow the format
// extension e.g. "events.json.zst".
func ForFile(name string) (Codec, error) {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)
	comp := compressionByExt[ext]
	if comp != nil {
		base = strings.TrimSuffix(base, ext)
		ext = filepath.Ext(base)
	}
	c := byExt[ext]
	if c == nil {
		return nil, fmt.Errorf("codec: unsupported file extension in '%s'", name)
	}
	if comp != nil {
		return &compressed{inner: c, comp: comp}, nil
	}
	return c, nil
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	d, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	// human-readable on disk, it's small
	return pretty.Pretty(d), nil
}

func (jsonCodec) Unmarshal(d []byte, v any) error {
	return json.Unmarshal(d, v)
}

// plist goes through JSON like toon. XML plist <date> has whole-second
// precision, as a JSON string time.Time keeps nanoseconds. Files with
// native <date> values still decode.
type plistCodec struct{}

func (plistCodec) Name() string { return "plist" }

func (plistCodec) Marshal(v any) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return plist.MarshalIndent(generic, plist.XMLFormat, "\t")
}

func (plistCodec) Unmarshal(d []byte, v any) error {
	var generic any
	if _, err := plist.Unmarshal(d, &generic); err != nil {
		return err
	}
	return fromGeneric(generic, v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(d []byte, v any) error {
	return yaml.Unmarshal(d, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func newMsgpackHandle() *ugorji.MsgpackHandle {
	mh := &ugorji.MsgpackHandle{}
	// time.Time as msgpack timestamp extension
	mh.WriteExt = true
	return mh
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var d []byte
	enc := ugorji.NewEncoderBytes(&d, newMsgpackHandle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return d, nil
}

func (msgpackCodec) Unmarshal(d []byte, v any) error {
	dec := ugorji.NewDecoderBytes(d, newMsgpackHandle())
	return dec.Decode(v)
}

// toon works on generic values so we go through JSON first,
// that way types with custom JSON encoding (time.Time) survive
type toonCodec struct{}

func (toonCodec) Name() string { return "toon" }

func (toonCodec) Marshal(v any) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return toon.Marshal(generic)
}

func (toonCodec) Unmarshal(d []byte, v any) error {
	var generic any
	if err := toon.Unmarshal(d, &generic); err != nil {
		return err
	}
	return fromGeneric(generic, v)
}

// toGeneric converts v to maps, slices, strings, bools and numbers
// using its JSON encoding
func toGeneric(v any) (any, error) {
	d, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	if err = dec.Decode(&generic); err != nil {
		return nil, err
	}
	return numbersToNative(generic), nil
}

// fromGeneric is the reverse of toGeneric
func fromGeneric(generic any, v any) error {
	d, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(d, v)
}

// numbersToNative converts json.Number to int64 or float64
func numbersToNative(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i, el := range x {
			x[i] = numbersToNative(el)
		}
		return x
	case map[string]any:
		for k, el := range x {
			x[k] = numbersToNative(el)
		}
		return x
	}
	return v
}
