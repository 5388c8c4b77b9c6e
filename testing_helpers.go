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

	testutil "github.com/spimemory/go-25aa1024/internal/testing"
)

// errInjectedTransfer is returned by FailAfterPageWrites-triggered
// failures.
var errInjectedTransfer = errors.New("injected transfer failure")

// MockTransport is an in-memory Transport and PinController backed by
// virtual chip models. It is used throughout the driver's own tests and
// exported so integrators can test their code without hardware.
type MockTransport struct {
	chips   map[Line]*testutil.VirtualEEPROM
	wpChips map[Line]*testutil.VirtualEEPROM
	levels  map[Line]bool

	// StuckLines marks lines whose drives have no electrical effect, so
	// read-back disagrees with the driven level.
	StuckLines map[Line]bool
	// LineErr injects an error for operations on a given line.
	LineErr map[Line]error
	// TransferErr injects a failure for every byte exchange.
	TransferErr error
	// FailAfterPageWrites, when positive, fails every byte exchange once
	// any chip has completed that many write-enable handshakes beyond the
	// first. Used to abort a multi-page write after its first pages have
	// fully completed.
	FailAfterPageWrites int

	transfers int
	closed    bool
}

// Compile-time interface checks.
var (
	_ Transport     = (*MockTransport)(nil)
	_ PinController = (*MockTransport)(nil)
)

// NewMockTransport creates an empty mock bus. Attach chips with AddChip.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		chips:      make(map[Line]*testutil.VirtualEEPROM),
		wpChips:    make(map[Line]*testutil.VirtualEEPROM),
		levels:     make(map[Line]bool),
		StuckLines: make(map[Line]bool),
		LineErr:    make(map[Line]error),
	}
}

// AddChip attaches a virtual chip to the given select and write-protect
// lines and returns it for inspection. Pass an empty write-protect line
// for a hardwired setup.
func (m *MockTransport) AddChip(cs, wp Line) *testutil.VirtualEEPROM {
	chip := testutil.NewVirtualEEPROM()
	m.chips[cs] = chip
	m.levels[cs] = true
	if wp != "" {
		m.wpChips[wp] = chip
		m.levels[wp] = true
	}
	return chip
}

// Transfer exchanges one octet with whichever chip is currently selected.
// With nothing selected the bus floats high.
func (m *MockTransport) Transfer(tx byte) (byte, error) {
	if m.TransferErr != nil {
		return 0, m.TransferErr
	}
	if m.FailAfterPageWrites > 0 {
		for _, chip := range m.chips {
			if chip.OpcodeCount(testutil.CmdWriteEnable) > m.FailAfterPageWrites {
				return 0, errInjectedTransfer
			}
		}
	}
	m.transfers++
	for cs, chip := range m.chips {
		if !m.levels[cs] {
			return chip.Exchange(tx), nil
		}
	}
	return 0xFF, nil
}

// SetLine drives a control line. Drives on stuck lines are dropped.
func (m *MockTransport) SetLine(line Line, high bool) error {
	if err := m.LineErr[line]; err != nil {
		return err
	}
	if m.StuckLines[line] {
		return nil
	}
	m.levels[line] = high
	if chip, ok := m.chips[line]; ok {
		chip.SetSelect(high)
	}
	if chip, ok := m.wpChips[line]; ok {
		chip.SetWriteProtect(high)
	}
	return nil
}

// ReadLine samples the current line level.
func (m *MockTransport) ReadLine(line Line) (bool, error) {
	if err := m.LineErr[line]; err != nil {
		return false, err
	}
	return m.levels[line], nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockTransport) IsClosed() bool {
	return m.closed
}

// TransferCount returns the number of byte exchanges so far. Tests use it
// to assert that validation failures issue zero bus transactions.
func (m *MockTransport) TransferCount() int {
	return m.transfers
}

// noopClock skips all delays so tests run instantly.
type noopClock struct{}

func (noopClock) Sleep(_ time.Duration) {}
