/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/Seednode/typerace/race"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodecFor(t *testing.T) {
	tests := []struct {
		query string
		name  string
		frame int
		ok    bool
	}{
		{"", "json", websocket.TextMessage, true},
		{"json", "json", websocket.TextMessage, true},
		{"msgpack", "msgpack", websocket.BinaryMessage, true},
		{"xml", "", 0, false},
	}

	for _, tt := range tests {
		cd, ok := codecFor(tt.query)
		if ok != tt.ok {
			t.Fatalf("codecFor(%q): ok = %v, want %v", tt.query, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if cd.name() != tt.name || cd.frame() != tt.frame {
			t.Fatalf("codecFor(%q) = %s/%d, want %s/%d", tt.query, cd.name(), cd.frame(), tt.name, tt.frame)
		}
	}
}

func TestMsgpackUsesJSONFieldNames(t *testing.T) {
	progress := 42.5

	data, err := msgpackCodec{}.encode(race.Event{
		Type:     race.ProgressUpdated,
		RoomID:   "ABC123",
		PlayerID: "p1",
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if raw["type"] != "progressUpdated" || raw["roomId"] != "ABC123" || raw["playerId"] != "p1" {
		t.Fatalf("unexpected keys: %v", raw)
	}
	if raw["progress"] != 42.5 {
		t.Fatalf("expected progress 42.5, got %v", raw["progress"])
	}
	if _, ok := raw["results"]; ok {
		t.Fatalf("omitempty fields should be absent: %v", raw)
	}
}

func TestCodecsDecodeClientMessages(t *testing.T) {
	want := ClientMessage{Type: "updateProgress", Progress: 12.5, TypedText: "the quick"}

	for _, cd := range []codec{jsonCodec{}, msgpackCodec{}} {
		data, err := cd.encode(want)
		if err != nil {
			t.Fatalf("%s encode: %v", cd.name(), err)
		}

		var got ClientMessage
		if err := cd.decode(data, &got); err != nil {
			t.Fatalf("%s decode: %v", cd.name(), err)
		}

		if got != want {
			t.Fatalf("%s: got %+v, want %+v", cd.name(), got, want)
		}
	}
}

func TestClientMessageAction(t *testing.T) {
	tests := []struct {
		msg     ClientMessage
		want    string
		wantErr bool
	}{
		{ClientMessage{Type: "createRoom"}, "createRoom", false},
		{ClientMessage{Type: "joinRoom", RoomID: "abc123"}, "joinRoom", false},
		{ClientMessage{Type: "joinRoom", RoomID: "  "}, "", true},
		{ClientMessage{Type: "playerReady", Ready: true}, "playerReady", false},
		{ClientMessage{Type: "leaveRoom"}, "leaveRoom", false},
		{ClientMessage{Type: "updateProgress", Progress: 50}, "updateProgress", false},
		{ClientMessage{Type: "startRace"}, "", true},
	}

	for _, tt := range tests {
		a, err := tt.msg.action()
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: err = %v, wantErr %v", tt.msg.Type, err, tt.wantErr)
		}
		if err == nil && race.Name(a) != tt.want {
			t.Fatalf("%s: action name %q, want %q", tt.msg.Type, race.Name(a), tt.want)
		}
	}
}
