package danmaku

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/forPelevin/dmcut/internal/types"
)

// Field numbers of the bullet-comment segment reply. Only the ones read
// here are listed; everything else is skipped.
const (
	segmentElemField  protowire.Number = 1
	elemProgressField protowire.Number = 2 // milliseconds into the video
	elemContentField  protowire.Number = 7
)

// ParseSegment decodes a binary bullet-comment segment (the protobuf reply
// the video site serves per six-minute segment) into chat events. Several
// segment files concatenated byte for byte decode as one, since the
// elements are a repeated field. Cleanup matches ParseASS.
func ParseSegment(r io.Reader) ([]types.ChatEvent, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read segment: %w", err)
	}

	var events []types.ChatEvent
	for off := 0; off < len(b); {
		num, typ, n := protowire.ConsumeTag(b[off:])
		if n < 0 {
			return nil, fmt.Errorf("danmaku segment: bad tag at byte %d: %w", off, protowire.ParseError(n))
		}
		off += n
		if num == segmentElemField && typ == protowire.BytesType {
			elem, n := protowire.ConsumeBytes(b[off:])
			if n < 0 {
				return nil, fmt.Errorf("danmaku segment: bad element at byte %d: %w", off, protowire.ParseError(n))
			}
			off += n
			ev, err := decodeElem(elem)
			if err != nil {
				return nil, err
			}
			if ev.Time > 0 && ev.Text != "" {
				events = append(events, ev)
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b[off:])
		if n < 0 {
			return nil, fmt.Errorf("danmaku segment: bad field %d at byte %d: %w", num, off, protowire.ParseError(n))
		}
		off += n
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	return events, nil
}

func decodeElem(b []byte) (types.ChatEvent, error) {
	var ev types.ChatEvent
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ev, fmt.Errorf("danmaku element: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == elemProgressField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return ev, fmt.Errorf("danmaku element progress: %w", protowire.ParseError(n))
			}
			b = b[n:]
			ev.Time = float64(int32(v)) / 1000
		case num == elemContentField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return ev, fmt.Errorf("danmaku element content: %w", protowire.ParseError(n))
			}
			b = b[n:]
			text := strings.ToValidUTF8(string(v), "")
			ev.Text = strings.TrimSpace(controlRe.ReplaceAllString(text, ""))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ev, fmt.Errorf("danmaku element field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return ev, nil
}

// ParserFor picks the decoder for a chat file by extension: .bin segments
// or ASS exports.
func ParserFor(path string) func(io.Reader) ([]types.ChatEvent, error) {
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		return ParseSegment
	}
	return ParseASS
}
