package main

import (
	"bytes"
	"testing"

	"github.com/northvolt/go-w5500"
)

func TestPrettyHexIndent(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		prefix string
		space  string
		want   string
	}{
		{"empty", []byte{}, "  ", "", ""},
		{"one", []byte{0x04}, "  ", "", "  04"},
		{"two", []byte{0x00, 0x01}, "  ", "", "  00 01"},
		{
			"big", bytes.Repeat([]byte{0x00}, 32), "    ", "",
			"    00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n" +
				"    00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00",
		},
		{
			"space", bytes.Repeat([]byte{0xff}, 16), "    ", " ",
			"    FF FF FF FF FF FF FF FF  FF FF FF FF FF FF FF FF",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := prettyHexIndent(tc.in, tc.prefix, tc.space)
			if got != tc.want {
				t.Errorf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseBlock(t *testing.T) {
	testCases := []struct {
		in      string
		want    w5500.Block
		wantErr bool
	}{
		{"common", w5500.BlockCommon, false},
		{"COMMON", w5500.BlockCommon, false},
		{"s0", w5500.SocketRegister(0), false},
		{"s7-tx", w5500.SocketTxBuffer(7), false},
		{"s3-rx", w5500.SocketRxBuffer(3), false},
		{"s8", 0, true},
		{"s1-foo", 0, true},
		{"x", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseBlock(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("want 0x%02x, got 0x%02x", tc.want, got)
			}
		})
	}
}

func TestParseAddr(t *testing.T) {
	for in, want := range map[string]uint16{
		"0x0039": 0x0039,
		"2e":     0x002e,
		"0XFFFF": 0xffff,
	} {
		got, err := parseAddr(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Errorf("%s: want 0x%04x, got 0x%04x", in, want, got)
		}
	}
	if _, err := parseAddr("0x10000"); err == nil {
		t.Error("want error for address out of range")
	}
}

func TestParseHex(t *testing.T) {
	got, err := parseHex([]string{"00:08:dc", "01 02", "03"})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x08, 0xdc, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("want % x, got % x", want, got)
	}
}
