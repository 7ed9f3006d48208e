/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// codec frames messages on one websocket connection. Both codecs use the
// json struct tags, so field names are identical on the wire.
type codec interface {
	name() string
	encode(v any) ([]byte, error)
	decode(data []byte, v any) error
	frame() int
}

type jsonCodec struct{}

func (jsonCodec) name() string { return "json" }

func (jsonCodec) encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) frame() int { return websocket.TextMessage }

type msgpackCodec struct{}

func (msgpackCodec) name() string { return "msgpack" }

func (msgpackCodec) encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (msgpackCodec) decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")

	return dec.Decode(v)
}

func (msgpackCodec) frame() int { return websocket.BinaryMessage }

// codecFor selects a codec from the ?codec= query parameter.
func codecFor(name string) (codec, bool) {
	switch name {
	case "", "json":
		return jsonCodec{}, true
	case "msgpack":
		return msgpackCodec{}, true
	}

	return nil, false
}
