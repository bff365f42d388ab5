package io

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
)

// Rom holds a program image as a list of instruction words.
type Rom struct {
	Data []uint32
}

// NewRom decodes a big-endian program image.
func NewRom(image []byte) (rom *Rom, err error) {
	if len(image)%4 != 0 {
		err = ErrImageLength
		return
	}

	rom = &Rom{
		Data: make([]uint32, len(image)/4),
	}
	for n := range rom.Data {
		rom.Data[n] = binary.BigEndian.Uint32(image[n*4:])
	}

	return
}

// LoadRom reads and decodes a big-endian program image.
func LoadRom(r io.Reader) (rom *Rom, err error) {
	image, err := io.ReadAll(r)
	if err != nil {
		return
	}

	rom, err = NewRom(image)
	return
}

// Bytes encodes the program image as big-endian bytes.
func (rom *Rom) Bytes() (image []byte) {
	image = make([]byte, 0, len(rom.Data)*4)
	for _, word := range rom.Data {
		image = binary.BigEndian.AppendUint32(image, word)
	}

	return
}

// WriteTo writes the big-endian program image.
func (rom *Rom) WriteTo(w io.Writer) (n int64, err error) {
	written, err := w.Write(rom.Bytes())
	n = int64(written)
	return
}

// Digest returns the BLAKE3-256 hash of the big-endian program image.
func (rom *Rom) Digest() (digest [32]byte) {
	digest = blake3.Sum256(rom.Bytes())
	return
}
