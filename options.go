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
	"time"
)

// Config contains the controller configuration.
type Config struct {
	// Clock provides the settle and poll delays.
	Clock Clock
	// ChipSelects maps device index to its select line.
	ChipSelects []Line
	// WriteProtects maps device index to its write-protect line. Ignored
	// when HardwiredWriteProtect is set.
	WriteProtects []Line
	// SettleDelay is inserted between driving a control line and reading
	// it back.
	SettleDelay time.Duration
	// PollInterval is the delay between write-in-progress polls.
	PollInterval time.Duration
	// PollTimeout bounds how long a completion poll may run before the
	// device is declared unresponsive. A page write burns for up to 6 ms;
	// the default leaves generous margin.
	PollTimeout time.Duration
	// HardwiredWriteProtect declares the write-protect lines as strapped
	// in hardware: the driver then never touches them.
	HardwiredWriteProtect bool
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() *Config {
	return &Config{
		Clock:         realClock{},
		ChipSelects:   []Line{"CS0", "CS1", "CS2", "CS3"},
		WriteProtects: []Line{"WP0", "WP1", "WP2", "WP3"},
		SettleDelay:   2 * time.Microsecond,
		PollInterval:  500 * time.Microsecond,
		PollTimeout:   20 * time.Millisecond,
	}
}

// Option is a functional option for configuring a Controller.
type Option func(*Controller) error

// WithChipSelects sets the select line of each device index.
func WithChipSelects(lines ...Line) Option {
	return func(c *Controller) error {
		if len(lines) == 0 || len(lines) > MaxDevices {
			return errors.New("chip select count must be between 1 and 4")
		}
		c.config.ChipSelects = lines
		return nil
	}
}

// WithWriteProtects sets the write-protect line of each device index.
func WithWriteProtects(lines ...Line) Option {
	return func(c *Controller) error {
		if len(lines) == 0 || len(lines) > MaxDevices {
			return errors.New("write protect count must be between 1 and 4")
		}
		c.config.WriteProtects = lines
		return nil
	}
}

// WithHardwiredWriteProtect declares the write-protect lines as strapped
// in hardware. The driver skips all write-protect manipulation; status
// writes then depend on the strap level.
func WithHardwiredWriteProtect() Option {
	return func(c *Controller) error {
		c.config.HardwiredWriteProtect = true
		return nil
	}
}

// WithClock replaces the delay source.
func WithClock(clock Clock) Option {
	return func(c *Controller) error {
		if clock == nil {
			return errors.New("nil clock")
		}
		c.config.Clock = clock
		return nil
	}
}

// WithSettleDelay sets the drive-to-readback settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) error {
		c.config.SettleDelay = d
		return nil
	}
}

// WithPollInterval sets the delay between write-in-progress polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		c.config.PollInterval = d
		return nil
	}
}

// WithPollTimeout sets the completion poll bound.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Controller) error {
		if d <= 0 {
			return errors.New("poll timeout must be positive")
		}
		c.config.PollTimeout = d
		return nil
	}
}
