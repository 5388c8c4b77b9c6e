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
	"fmt"
	"time"
)

// pinControl drives the select and write-protect lines with a settle delay
// and read-back verification. A mismatch between the driven and observed
// level is reported, never silently retried; the caller decides whether to
// abort or redo the whole operation.
type pinControl struct {
	pins   PinController
	clock  Clock
	settle time.Duration
}

func (p *pinControl) drive(line Line, high bool) error {
	if err := p.pins.SetLine(line, high); err != nil {
		return NewTransportError("set line", string(line), err, ErrorTypeTransient)
	}

	// Give the output latch a few bus-clock periods to settle before
	// sampling it.
	p.clock.Sleep(p.settle)

	got, err := p.pins.ReadLine(line)
	if err != nil {
		return NewTransportError("read line", string(line), err, ErrorTypeTransient)
	}
	if got != high {
		return fmt.Errorf("%w: %s driven %s, read back %s",
			ErrLineStuck, line, levelName(high), levelName(got))
	}
	return nil
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
