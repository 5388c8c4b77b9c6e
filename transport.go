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

package aa1024

// Transport is the byte-exchange primitive of the serial bus.
// Backends must not manage chip select themselves: framing happens above
// this interface and a single framed transaction spans many Transfer
// calls. See transport/spidev and transport/serialbridge for production
// implementations.
type Transport interface {
	// Transfer clocks one octet out on the bus while sampling one octet
	// in, in the same cycle.
	Transfer(tx byte) (byte, error)

	// Close releases the bus.
	Close() error
}

// Line names a digital control line. The backend resolves the name: GPIO
// pin names for periph.io, bridge pin numbers for serial bridges.
type Line string

// PinController drives and reads back the chip-select and write-protect
// lines. Both kinds of line are active-low. ReadLine must sample the
// actual electrical level, not the last driven value, so the driver can
// detect floating or shorted lines.
type PinController interface {
	// SetLine drives line to the given level (true = high).
	SetLine(line Line, high bool) error

	// ReadLine samples the current level of line.
	ReadLine(line Line) (bool, error)
}
