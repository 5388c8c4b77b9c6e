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

// Package spidev implements the driver's transport on periph.io: the byte
// exchange rides a kernel SPI port and the select/write-protect lines are
// plain GPIOs named by the host.
//
// The port is opened with the NoCS flag: chip select belongs to the
// driver's pin control, not the kernel, because a single framed
// transaction spans many one-octet transfers and the kernel would toggle
// its own CS around each of them.
package spidev

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	aa1024 "github.com/spimemory/go-25aa1024"
)

// Transport is a periph.io-backed Transport and PinController.
type Transport struct {
	port spi.PortCloser
	conn spi.Conn
	pins map[aa1024.Line]gpio.PinIO

	speed physic.Frequency
	mode  spi.Mode
}

// Compile-time interface checks.
var (
	_ aa1024.Transport     = (*Transport)(nil)
	_ aa1024.PinController = (*Transport)(nil)
)

// Option is a functional option for configuring the transport.
type Option func(*Transport) error

// WithSpeed sets the bus clock frequency. The 25AA1024 is good to 20 MHz;
// the default is a conservative 5 MHz.
func WithSpeed(speed physic.Frequency) Option {
	return func(t *Transport) error {
		if speed <= 0 {
			return fmt.Errorf("invalid SPI speed %v", speed)
		}
		t.speed = speed
		return nil
	}
}

// New opens the named SPI port (see spireg; "" picks the first available)
// and initializes the periph host drivers.
func New(portName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	t := &Transport{
		pins:  make(map[aa1024.Line]gpio.PinIO),
		speed: 5 * physic.MegaHertz,
		mode:  spi.Mode0,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", portName, err)
	}

	conn, err := port.Connect(t.speed, t.mode|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect to SPI port %q: %w", portName, err)
	}

	t.port = port
	t.conn = conn
	return t, nil
}

// Transfer clocks one octet out while sampling one octet in.
func (t *Transport) Transfer(tx byte) (byte, error) {
	var rx [1]byte
	if err := t.conn.Tx([]byte{tx}, rx[:]); err != nil {
		return 0, fmt.Errorf("spi transfer: %w", err)
	}
	return rx[0], nil
}

// SetLine drives the named GPIO.
func (t *Transport) SetLine(line aa1024.Line, high bool) error {
	pin, err := t.pin(line)
	if err != nil {
		return err
	}
	if err := pin.Out(gpio.Level(high)); err != nil {
		return fmt.Errorf("failed to drive %s: %w", line, err)
	}
	return nil
}

// ReadLine samples the named GPIO.
func (t *Transport) ReadLine(line aa1024.Line) (bool, error) {
	pin, err := t.pin(line)
	if err != nil {
		return false, err
	}
	return bool(pin.Read()), nil
}

// Close releases the SPI port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	return nil
}

// pin resolves and caches a GPIO by its registry name.
func (t *Transport) pin(line aa1024.Line) (gpio.PinIO, error) {
	if pin, ok := t.pins[line]; ok {
		return pin, nil
	}
	pin := gpioreg.ByName(string(line))
	if pin == nil {
		return nil, fmt.Errorf("no GPIO named %q", line)
	}
	t.pins[line] = pin
	return pin, nil
}
