// go-25aa1024
// Copyright (c) 2025 The go-25aa1024 Authors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-25aa1024.
//
// go-25aa1024 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-25aa1024 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-25aa1024; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package serialbridge implements the driver's transport over a USB
// serial SPI bridge: a small adapter firmware that exposes raw SPI
// transfers and pin control across a serial port.
//
// The bridge protocol is deliberately tiny. Each request is one framed
// command and each reply is a fixed-length response:
//
//	0x01 <octet>          exchange one octet    -> <octet received>
//	0x02 <pin> <level>    drive a control pin   -> 0x00 ok, 0x01 error
//	0x03 <pin>            sample a control pin  -> <level>
//
// Control lines are named by their bridge pin number ("0".."7" by
// default); WithLineMap installs friendlier names.
package serialbridge

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	aa1024 "github.com/spimemory/go-25aa1024"
)

// Bridge command codes.
const (
	opTransfer byte = 0x01
	opSetLine  byte = 0x02
	opReadLine byte = 0x03
)

// ErrBridgeNak indicates the bridge rejected a pin command.
var ErrBridgeNak = errors.New("bridge rejected command")

// Transport is a serial-bridge-backed Transport and PinController.
type Transport struct {
	port  serial.Port
	lines map[aa1024.Line]byte
}

// Compile-time interface checks.
var (
	_ aa1024.Transport     = (*Transport)(nil)
	_ aa1024.PinController = (*Transport)(nil)
)

// Option is a functional option for configuring the transport.
type Option func(*Transport) error

// WithLineMap maps driver line names to bridge pin numbers, replacing the
// default map (CS0-CS3 on pins 0-3, WP0-WP3 on pins 4-7).
func WithLineMap(lines map[aa1024.Line]byte) Option {
	return func(t *Transport) error {
		if len(lines) == 0 {
			return errors.New("empty line map")
		}
		t.lines = lines
		return nil
	}
}

// New opens the named serial port at 115200 8N1 and wraps it as a
// transport.
func New(portName string, opts ...Option) (*Transport, error) {
	mode := &serial.Mode{BaudRate: 115200}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %q: %w", portName, err)
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	t, err := NewFromPort(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewFromPort wraps an already-open serial port. Useful for tests and for
// integrators with nonstandard port settings.
func NewFromPort(port serial.Port, opts ...Option) (*Transport, error) {
	t := &Transport{
		port: port,
		lines: map[aa1024.Line]byte{
			"CS0": 0, "CS1": 1, "CS2": 2, "CS3": 3,
			"WP0": 4, "WP1": 5, "WP2": 6, "WP3": 7,
		},
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Transfer exchanges one octet through the bridge.
func (t *Transport) Transfer(tx byte) (byte, error) {
	resp, err := t.command([]byte{opTransfer, tx}, 1)
	if err != nil {
		return 0, err
	}
	return resp[0], nil
}

// SetLine drives a bridge pin.
func (t *Transport) SetLine(line aa1024.Line, high bool) error {
	pin, err := t.pin(line)
	if err != nil {
		return err
	}
	level := byte(0)
	if high {
		level = 1
	}
	resp, err := t.command([]byte{opSetLine, pin, level}, 1)
	if err != nil {
		return err
	}
	if resp[0] != 0x00 {
		return fmt.Errorf("%w: set pin %d", ErrBridgeNak, pin)
	}
	return nil
}

// ReadLine samples a bridge pin.
func (t *Transport) ReadLine(line aa1024.Line) (bool, error) {
	pin, err := t.pin(line)
	if err != nil {
		return false, err
	}
	resp, err := t.command([]byte{opReadLine, pin}, 1)
	if err != nil {
		return false, err
	}
	return resp[0] != 0, nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

func (t *Transport) pin(line aa1024.Line) (byte, error) {
	pin, ok := t.lines[line]
	if !ok {
		return 0, fmt.Errorf("no bridge pin for line %q", line)
	}
	return pin, nil
}

// command writes one request and reads the fixed-length reply.
func (t *Transport) command(req []byte, respLen int) ([]byte, error) {
	if _, err := t.port.Write(req); err != nil {
		return nil, fmt.Errorf("bridge write: %w", err)
	}
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(t.port, resp); err != nil {
		return nil, fmt.Errorf("bridge read: %w", err)
	}
	return resp, nil
}
