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

import (
	"errors"
	"fmt"
)

// MaxDevices is the number of chip-select lines the controller can
// address on one bus.
const MaxDevices = 4

// Controller owns the shared bus: the byte-exchange transport, the
// select/write-protect lines, and the registry of attached devices.
//
// Thread Safety: Controller and the Devices it hands out are NOT
// thread-safe. The bus is a single shared resource; all operations, across
// all devices, must be serialized by the caller with external
// synchronization.
type Controller struct {
	transport Transport
	pins      *pinControl
	config    *Config
	selected  *Device
	devices   [MaxDevices]*Device
}

// Device is the handle for one memory chip on the bus. Obtain one from
// Controller.Init; all logical operations are methods on it.
type Device struct {
	ctrl       *Controller
	cs         Line
	wp         Line // empty when write protect is hardwired
	index      int
	protection ProtectionLevel
}

// New creates a Controller for the given transport and pin controller.
func New(transport Transport, pins PinController, opts ...Option) (*Controller, error) {
	if transport == nil {
		return nil, errors.New("nil transport")
	}
	if pins == nil {
		return nil, errors.New("nil pin controller")
	}

	c := &Controller{
		transport: transport,
		config:    DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.pins = &pinControl{
		pins:   pins,
		clock:  c.config.Clock,
		settle: c.config.SettleDelay,
	}

	return c, nil
}

// Init claims the control lines of the device at index, wakes the chip,
// verifies its electronic signature and caches the block-protection level
// from the status register. Calling Init on an already-initialized index
// returns the existing handle.
func (c *Controller) Init(index int) (*Device, error) {
	if index < 0 || index >= MaxDevices || index >= len(c.config.ChipSelects) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDevice, index)
	}
	if d := c.devices[index]; d != nil {
		return d, nil
	}

	d := &Device{
		ctrl:  c,
		index: index,
		cs:    c.config.ChipSelects[index],
	}
	if !c.config.HardwiredWriteProtect {
		if index >= len(c.config.WriteProtects) {
			return nil, fmt.Errorf("%w: no write-protect line for device %d", ErrInvalidDevice, index)
		}
		d.wp = c.config.WriteProtects[index]
	}

	// Park select inactive before the first transaction, and engage write
	// protection until a status write needs it lifted.
	if err := c.pins.drive(d.cs, true); err != nil {
		return nil, err
	}
	if d.wp != "" {
		if err := c.pins.drive(d.wp, false); err != nil {
			return nil, err
		}
	}

	if err := d.Wake(); err != nil {
		return nil, err
	}
	if _, err := d.ReadStatus(); err != nil {
		return nil, err
	}

	c.devices[index] = d
	return d, nil
}

// Device returns the initialized device at index.
func (c *Controller) Device(index int) (*Device, error) {
	if index < 0 || index >= MaxDevices {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDevice, index)
	}
	d := c.devices[index]
	if d == nil {
		return nil, fmt.Errorf("%w: device %d", ErrNotInitialized, index)
	}
	return d, nil
}

// Close shuts down every initialized device and closes the transport.
func (c *Controller) Close() error {
	var firstErr error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.transport.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close transport: %w", err)
	}
	return firstErr
}

// Index returns the device's registry index.
func (d *Device) Index() int {
	return d.index
}

// Protection returns the cached block-protection level. The cache is
// refreshed by Init, ReadStatus and WriteStatus; it is what erase and
// write validation consult so that a rejected request issues zero bus
// transactions.
func (d *Device) Protection() ProtectionLevel {
	return d.protection
}

// Close deselects the device if needed and removes it from the registry.
// The chip itself is left in standby.
func (d *Device) Close() error {
	var err error
	if d.ctrl.selected == d {
		err = d.endTransaction()
	}
	d.ctrl.devices[d.index] = nil
	return err
}

// name labels the device in errors.
func (d *Device) name() string {
	return fmt.Sprintf("mem%d", d.index)
}
