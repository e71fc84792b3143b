// Package receiver accepts kneeboard page files pushed over TCP.
//
// Wire format, repeated until the sender closes the connection:
//
//	[NameLen:4 LE][Name:NameLen UTF-8][FileLen:8 LE][File:FileLen]
package receiver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	nameHeaderSize = 4
	fileHeaderSize = 8

	// MaxNameBytes bounds the file name length.
	MaxNameBytes = 1024
)

// ErrTooLarge reports a frame exceeding the configured limits.
var ErrTooLarge = errors.New("receiver: frame too large")

// Frame is one received file.
type Frame struct {
	Name string
	Data []byte
}

// WriteFrame encodes one file onto w.
func WriteFrame(w io.Writer, name string, data []byte) error {
	if len(name) > MaxNameBytes {
		return fmt.Errorf("receiver: name of %d bytes: %w", len(name), ErrTooLarge)
	}
	var nh [nameHeaderSize]byte
	binary.LittleEndian.PutUint32(nh[:], uint32(len(name)))
	if _, err := w.Write(nh[:]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	var fh [fileHeaderSize]byte
	binary.LittleEndian.PutUint64(fh[:], uint64(len(data)))
	if _, err := w.Write(fh[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadFrame decodes one file from r. It returns io.EOF only when r ends
// cleanly before a new frame; a frame cut short yields io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, maxFileBytes int64) (Frame, error) {
	var nh [nameHeaderSize]byte
	if _, err := io.ReadFull(r, nh[:]); err != nil {
		return Frame{}, err
	}
	nameLen := binary.LittleEndian.Uint32(nh[:])
	if nameLen == 0 {
		return Frame{}, errors.New("receiver: empty file name")
	}
	if nameLen > MaxNameBytes {
		return Frame{}, fmt.Errorf("receiver: name of %d bytes: %w", nameLen, ErrTooLarge)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Frame{}, unexpected(err)
	}
	if !utf8.Valid(name) {
		return Frame{}, errors.New("receiver: file name is not valid UTF-8")
	}

	var fh [fileHeaderSize]byte
	if _, err := io.ReadFull(r, fh[:]); err != nil {
		return Frame{}, unexpected(err)
	}
	fileLen := binary.LittleEndian.Uint64(fh[:])
	if maxFileBytes > 0 && fileLen > uint64(maxFileBytes) {
		return Frame{}, fmt.Errorf("receiver: %s is %s, limit %s: %w", name,
			humanize.Bytes(fileLen), humanize.Bytes(uint64(maxFileBytes)), ErrTooLarge)
	}
	data := make([]byte, fileLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return Frame{}, unexpected(err)
	}
	return Frame{Name: string(name), Data: data}, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
