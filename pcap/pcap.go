// Copyright (c) 2026, The RangeNet Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package pcap writes ranging frames to a PCAP capture file so an exchange
// can be inspected in standard dissection tools.
package pcap

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/pkg/errors"
)

const (
	dltIeee802154    = 195
	magicNumber      = 0xA1B2C3D4
	versionMajor     = 2
	versionMinor     = 4
	fileHeaderSize   = 24
	recordHeaderSize = 16
	snapLen          = 256
)

// File is an append-only PCAP capture. Safe for concurrent appenders; the
// simulated air link writes from whatever goroutine transmits.
type File struct {
	mu sync.Mutex
	fd *os.File
}

// NewFile creates (or truncates) a capture file with an IEEE 802.15.4 link
// type header.
func NewFile(filename string) (*File, error) {
	fd, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "create capture file %s", filename)
	}
	f := &File{fd: fd}
	if err := f.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func (f *File) writeHeader() error {
	var header [fileHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], magicNumber)
	binary.LittleEndian.PutUint16(header[4:6], versionMajor)
	binary.LittleEndian.PutUint16(header[6:8], versionMinor)
	binary.LittleEndian.PutUint32(header[16:20], snapLen)
	binary.LittleEndian.PutUint32(header[20:24], dltIeee802154)
	if _, err := f.fd.Write(header[:]); err != nil {
		return errors.Wrap(err, "write capture header")
	}
	return f.fd.Sync()
}

// AppendFrame records one frame at the given capture time in microseconds.
func (f *File) AppendFrame(timestampUs uint64, data []byte) error {
	var header [recordHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], uint32(timestampUs/1000000))
	binary.LittleEndian.PutUint32(header[4:8], uint32(timestampUs%1000000))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(data)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(data)))

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.fd.Write(header[:]); err != nil {
		return errors.Wrap(err, "write capture record")
	}
	if _, err := f.fd.Write(data); err != nil {
		return errors.Wrap(err, "write capture record")
	}
	return nil
}

func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fd.Sync()
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fd.Close()
}
