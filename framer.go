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

import "fmt"

// Command framing primitives.
//
// Every primitive leaves the device selected on success so callers can
// chain them into one framed transaction without re-selecting;
// endTransaction is the only way out. The controller tracks which device
// holds the bus, so starting a frame while another device is selected is
// an error rather than silent corruption.

// selectDevice asserts the device's select line if it does not already
// hold the bus.
func (d *Device) selectDevice() error {
	c := d.ctrl
	if c.selected == d {
		return nil
	}
	if c.selected != nil {
		return fmt.Errorf("%w: device %d", ErrBusBusy, c.selected.index)
	}
	if err := c.pins.drive(d.cs, false); err != nil {
		return err
	}
	c.selected = d
	return nil
}

// endTransaction raises the select line, completing the current framed
// transaction. Safe to call when the device is not selected.
func (d *Device) endTransaction() error {
	c := d.ctrl
	if c.selected != d {
		return nil
	}
	// Clear the bus state first so a failed readback cannot wedge it.
	c.selected = nil
	return c.pins.drive(d.cs, true)
}

// sendByte transmits one octet. The device must already be selected.
func (d *Device) sendByte(b byte) error {
	if _, err := d.ctrl.transport.Transfer(b); err != nil {
		return NewTransportError("transfer", d.name(),
			fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
	}
	return nil
}

// readByte clocks out a dummy octet and returns the octet received in the
// same cycle. The device must already be selected.
func (d *Device) readByte() (byte, error) {
	rx, err := d.ctrl.transport.Transfer(0x00)
	if err != nil {
		return 0, NewTransportError("transfer", d.name(),
			fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
	}
	return rx, nil
}

// sendCommand selects the device (if not already) and transmits one
// instruction octet.
func (d *Device) sendCommand(op byte) error {
	if err := d.selectDevice(); err != nil {
		return err
	}
	return d.sendByte(op)
}

// sendAddress transmits a 24-bit address, most significant octet first.
// The top seven bits are don't-care on a 1-Mbit part but are transmitted
// anyway. Assumes the device is already selected: an address is never
// sent without an instruction before it.
func (d *Device) sendAddress(address uint32) error {
	for _, b := range [3]byte{byte(address >> 16), byte(address >> 8), byte(address)} {
		if err := d.sendByte(b); err != nil {
			return err
		}
	}
	return nil
}

// sendCommandAndAddress composes sendCommand and sendAddress.
func (d *Device) sendCommandAndAddress(op byte, address uint32) error {
	if err := d.sendCommand(op); err != nil {
		return err
	}
	return d.sendAddress(address)
}
