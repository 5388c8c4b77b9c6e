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
	"context"
	"fmt"
)

// Read returns count bytes starting at address.
func (d *Device) Read(address uint32, count int) ([]byte, error) {
	return d.ReadContext(context.Background(), address, count)
}

// ReadContext returns count bytes starting at address. The device's
// internal address pointer auto-increments and rolls over at the top of
// the array, so a read may wrap past the capacity boundary back to
// address 0. Reads are immediate: no write-enable handshake and no
// completion poll.
//
// Cancellation is honored between octets, never mid-frame.
func (d *Device) ReadContext(ctx context.Context, address uint32, count int) ([]byte, error) {
	if address >= Capacity {
		return nil, fmt.Errorf("%w: read at 0x%06X", ErrAddressRange, address)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrAddressRange, count)
	}

	if err := d.sendCommandAndAddress(cmdRead, address); err != nil {
		_ = d.endTransaction()
		return nil, err
	}

	data := make([]byte, count)
	for i := range data {
		if err := ctx.Err(); err != nil {
			_ = d.endTransaction()
			return nil, fmt.Errorf("read canceled: %w", err)
		}
		b, err := d.readByte()
		if err != nil {
			_ = d.endTransaction()
			return nil, err
		}
		data[i] = b
	}

	if err := d.endTransaction(); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteEnable sets the write enable latch. The latch is consumed by
// exactly the next mutating command and does not persist across a failed
// attempt, so every retried operation must re-enable.
func (d *Device) WriteEnable() error {
	return d.oneShot(cmdWriteEnable)
}

// WriteDisable resets the write enable latch.
func (d *Device) WriteDisable() error {
	return d.oneShot(cmdWriteDisable)
}

// oneShot sends a lone instruction octet. The instruction registers only
// when select is raised right after the eighth bit, so the transaction is
// ended immediately.
func (d *Device) oneShot(op byte) error {
	if err := d.sendCommand(op); err != nil {
		_ = d.endTransaction()
		return err
	}
	return d.endTransaction()
}

// Write programs data starting at address.
func (d *Device) Write(address uint32, data []byte) error {
	return d.WriteContext(context.Background(), address, data)
}

// WriteContext programs data starting at address.
//
// Unlike reads, writes do not advance past a page boundary: the device
// wraps within the current page and corrupts data. Any request crossing a
// boundary is therefore split into page-confined sub-writes, each with its
// own write-enable handshake and its own completion poll. On a sub-write
// failure the remaining pages are abandoned and the error reports how many
// completed.
func (d *Device) WriteContext(ctx context.Context, address uint32, data []byte) error {
	if address >= Capacity || int(address)+len(data) > Capacity {
		return fmt.Errorf("%w: write of %d bytes at 0x%06X", ErrAddressRange, len(data), address)
	}
	if d.protection.ProtectsRange(address, len(data)) {
		return fmt.Errorf("%w: write of %d bytes at 0x%06X (protection %s)",
			ErrWriteProtected, len(data), address, d.protection)
	}

	pages := pageSpan(address, len(data))
	done := 0
	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("write canceled after %d of %d page writes: %w", done, pages, err)
		}

		chunk := min(len(data), pageRemaining(address))
		if err := d.pageWrite(ctx, address, data[:chunk]); err != nil {
			return fmt.Errorf("write aborted after %d of %d page writes: %w", done, pages, err)
		}

		done++
		address += uint32(chunk)
		data = data[chunk:]
	}
	return nil
}

// pageWrite programs one page-confined chunk and waits for the internal
// burn to finish.
func (d *Device) pageWrite(ctx context.Context, address uint32, chunk []byte) error {
	if err := d.WriteEnable(); err != nil {
		return err
	}

	if err := d.sendCommandAndAddress(cmdWrite, address); err != nil {
		_ = d.endTransaction()
		return err
	}
	for _, b := range chunk {
		if err := d.sendByte(b); err != nil {
			_ = d.endTransaction()
			return err
		}
	}

	// Raising select is what starts the internal write cycle.
	if err := d.endTransaction(); err != nil {
		return err
	}
	return d.waitWriteComplete(ctx)
}

// waitWriteComplete polls the status register until the write-in-progress
// bit clears. The poll is bounded: a device that never reports completion
// is declared unresponsive rather than looping forever.
func (d *Device) waitWriteComplete(ctx context.Context) error {
	cfg := d.ctrl.config
	attempts := int(cfg.PollTimeout / cfg.PollInterval)
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("completion poll canceled: %w", err)
		}

		status, err := d.readStatus()
		if endErr := d.endTransaction(); err == nil {
			err = endErr
		}
		if err != nil {
			return err
		}
		if !status.WriteInProgress() {
			return nil
		}

		cfg.Clock.Sleep(cfg.PollInterval)
	}

	return fmt.Errorf("%w: still busy after %d polls over %v",
		ErrWriteTimeout, attempts, cfg.PollTimeout)
}

// readStatus issues RDSR and returns the register value.
//
// WARNING: leaves the device selected on return. Completion polling reads
// status mid-sequence and ends the transaction itself; callers that only
// want the value must deselect explicitly. Use ReadStatus for that.
func (d *Device) readStatus() (Status, error) {
	if err := d.sendCommand(cmdReadStatus); err != nil {
		return 0, err
	}
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return Status(b), nil
}

// ReadStatus reads the status register and deselects the device. The
// cached protection level is refreshed from the result.
func (d *Device) ReadStatus() (Status, error) {
	status, err := d.readStatus()
	if endErr := d.endTransaction(); err == nil {
		err = endErr
	}
	if err != nil {
		return 0, err
	}
	d.protection = status.Protection()
	return status, nil
}

// WriteStatus writes the nonvolatile status bits.
func (d *Device) WriteStatus(value Status) error {
	return d.WriteStatusContext(context.Background(), value)
}

// WriteStatusContext writes the nonvolatile status bits (block protection
// and WPEN, mask 0x8C) and verifies by read-back that they took effect. A
// mismatch means the device discarded the update, typically because
// hardware write protection was engaged.
//
// The write-protect line is lifted for the duration of the exchange and
// reasserted afterwards (unless hardwired).
func (d *Device) WriteStatusContext(ctx context.Context, value Status) error {
	if d.wp != "" {
		if err := d.ctrl.pins.drive(d.wp, true); err != nil {
			return err
		}
	}

	err := d.writeStatusExchange(ctx, value)

	if d.wp != "" {
		if wpErr := d.ctrl.pins.drive(d.wp, false); err == nil {
			err = wpErr
		}
	}
	if err != nil {
		return err
	}

	// Round-trip verification of the nonvolatile bits. ReadStatus also
	// refreshes the protection cache with whatever the device actually
	// holds, so a failed update leaves the cache truthful.
	got, err := d.ReadStatus()
	if err != nil {
		return err
	}
	if got&StatusNonvolatileMask != value&StatusNonvolatileMask {
		return fmt.Errorf("%w: wrote 0x%02X, read back 0x%02X (mask 0x%02X)",
			ErrStatusMismatch, byte(value), byte(got), byte(StatusNonvolatileMask))
	}
	return nil
}

func (d *Device) writeStatusExchange(ctx context.Context, value Status) error {
	if err := d.WriteEnable(); err != nil {
		return err
	}

	if err := d.sendCommand(cmdWriteStatus); err != nil {
		_ = d.endTransaction()
		return err
	}
	if err := d.sendByte(byte(value)); err != nil {
		_ = d.endTransaction()
		return err
	}
	if err := d.endTransaction(); err != nil {
		return err
	}

	// Nonvolatile bits burn like any other write. A discarded update
	// never sets write-in-progress, so this returns promptly either way.
	return d.waitWriteComplete(ctx)
}

// SetProtection sets the block-protection level, preserving the other
// nonvolatile status bits.
func (d *Device) SetProtection(level ProtectionLevel) error {
	return d.SetProtectionContext(context.Background(), level)
}

// SetProtectionContext sets the block-protection level.
func (d *Device) SetProtectionContext(ctx context.Context, level ProtectionLevel) error {
	status, err := d.ReadStatus()
	if err != nil {
		return err
	}
	return d.WriteStatusContext(ctx, status.WithProtection(level))
}

// ErasePage erases the 256-byte page containing address.
func (d *Device) ErasePage(address uint32) error {
	return d.ErasePageContext(context.Background(), address)
}

// ErasePageContext erases the 256-byte page containing address. The
// target is validated against the cached protection level before any bus
// transaction: a protected address fails without touching the bus.
func (d *Device) ErasePageContext(ctx context.Context, address uint32) error {
	if _, err := AddressToPage(address); err != nil {
		return err
	}
	if err := d.checkErasable(address); err != nil {
		return err
	}
	return d.erase(ctx, cmdPageErase, address, true)
}

// EraseSector erases the 32 KiB sector containing address.
func (d *Device) EraseSector(address uint32) error {
	return d.EraseSectorContext(context.Background(), address)
}

// EraseSectorContext erases the 32 KiB sector containing address, subject
// to the same validation as ErasePageContext.
func (d *Device) EraseSectorContext(ctx context.Context, address uint32) error {
	if _, err := AddressToSector(address); err != nil {
		return err
	}
	if err := d.checkErasable(address); err != nil {
		return err
	}
	return d.erase(ctx, cmdSectorErase, address, true)
}

// EraseChip erases the entire array.
func (d *Device) EraseChip() error {
	return d.EraseChipContext(context.Background())
}

// EraseChipContext erases the entire array. The device ignores chip erase
// while any block protection is active, so anything but ProtectNone is
// rejected up front.
func (d *Device) EraseChipContext(ctx context.Context) error {
	if d.protection != ProtectNone {
		return fmt.Errorf("%w: chip erase with protection %s", ErrWriteProtected, d.protection)
	}
	return d.erase(ctx, cmdChipErase, 0, false)
}

func (d *Device) checkErasable(address uint32) error {
	if d.protection.Protects(address) {
		return fmt.Errorf("%w: erase at 0x%06X (protection %s)",
			ErrWriteProtected, address, d.protection)
	}
	return nil
}

func (d *Device) erase(ctx context.Context, op byte, address uint32, withAddress bool) error {
	if err := d.WriteEnable(); err != nil {
		return err
	}

	var err error
	if withAddress {
		err = d.sendCommandAndAddress(op, address)
	} else {
		err = d.sendCommand(op)
	}
	if err != nil {
		_ = d.endTransaction()
		return err
	}

	if err := d.endTransaction(); err != nil {
		return err
	}
	return d.waitWriteComplete(ctx)
}

// Wake releases the device from deep power-down and verifies its
// electronic signature. A signature mismatch means the wrong part, a
// missing part, or a miswired bus. Also usable in standby as a
// presence check. Leaves the device deselected.
func (d *Device) Wake() error {
	if err := d.sendCommandAndAddress(cmdWake, wakeDummyAddress); err != nil {
		_ = d.endTransaction()
		return err
	}
	sig, err := d.readByte()
	if endErr := d.endTransaction(); err == nil {
		err = endErr
	}
	if err != nil {
		return err
	}

	if sig != Signature {
		return fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrSignatureMismatch, sig, Signature)
	}
	return nil
}

// Sleep puts the device into deep power-down, its lowest-power state. It
// ignores every instruction except wake until released. No verification
// is possible. Software-controlled write protection is engaged first so
// the array stays protected while asleep.
func (d *Device) Sleep() error {
	if d.wp != "" {
		if err := d.ctrl.pins.drive(d.wp, false); err != nil {
			return err
		}
	}

	if err := d.sendCommand(cmdDeepPowerDown); err != nil {
		_ = d.endTransaction()
		return err
	}
	// Raising select after the eighth bit is what actually enters deep
	// power-down.
	return d.endTransaction()
}
