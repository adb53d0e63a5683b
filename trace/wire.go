package trace

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire format constants.
const (
	HeaderSize      = 8
	Magic           = 0x4754 // ASCII 'GT'
	ProtocolVersion = 1
)

// Errors returned by wire format functions.
var (
	ErrBufferTooShort  = errors.New("trace: buffer too short for frame header")
	ErrBadMagic        = errors.New("trace: invalid magic bytes in frame header")
	ErrBadVersion      = errors.New("trace: unsupported protocol version")
	ErrPayloadTooShort = errors.New("trace: buffer too short for complete frame")
)

// FrameHeader is the decoded form of the 8-byte frame header.
type FrameHeader struct {
	Magic   uint16
	Version uint8
	Type    MessageType
	Length  uint32
}

// EncodeHeader writes an 8-byte frame header for the given message type
// and payload length.
func EncodeHeader(msgType MessageType, payloadLength uint32) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], Magic)
	buf[2] = ProtocolVersion
	buf[3] = byte(msgType)
	binary.LittleEndian.PutUint32(buf[4:8], payloadLength)
	return buf
}

// DecodeHeader parses an 8-byte frame header from data.
func DecodeHeader(data []byte) (FrameHeader, error) {
	if len(data) < HeaderSize {
		return FrameHeader{}, ErrBufferTooShort
	}

	magic := binary.BigEndian.Uint16(data[0:2])
	if magic != Magic {
		return FrameHeader{}, ErrBadMagic
	}
	if data[2] != ProtocolVersion {
		return FrameHeader{}, ErrBadVersion
	}

	return FrameHeader{
		Magic:   magic,
		Version: data[2],
		Type:    MessageType(data[3]),
		Length:  binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// EncodeFrame encodes a payload value into a complete frame
// (header + CBOR payload).
func EncodeFrame(msgType MessageType, payload any) ([]byte, error) {
	body, err := cbor.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("trace: cbor encode: %w", err)
	}

	frame := make([]byte, 0, HeaderSize+len(body))
	frame = append(frame, EncodeHeader(msgType, uint32(len(body)))...)
	frame = append(frame, body...)
	return frame, nil
}

// DecodeFrame splits one complete frame off the front of data, returning
// the header, the raw CBOR payload, and the remaining bytes.
func DecodeFrame(data []byte) (FrameHeader, []byte, []byte, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return FrameHeader{}, nil, nil, err
	}

	total := HeaderSize + int(header.Length)
	if len(data) < total {
		return FrameHeader{}, nil, nil, ErrPayloadTooShort
	}
	return header, data[HeaderSize:total], data[total:], nil
}
