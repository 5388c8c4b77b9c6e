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

// Status is the device STATUS register.
//
// Bit 0 (WIP) and bit 1 (WEL) are volatile and read-only; WEL is set and
// cleared indirectly through the write-enable/disable instructions. Bits
// 2-3 (BP0/BP1) select the block-protection level and bit 7 (WPEN) arms the
// hardware write-protect pin; those three are nonvolatile and writable only
// through the status-write protocol.
type Status byte

const (
	// StatusWriteInProgress is set while the device is internally burning
	// a write or erase. No mutating instruction is accepted until clear.
	StatusWriteInProgress Status = 1 << 0
	// StatusWriteEnabled is the write enable latch.
	StatusWriteEnabled Status = 1 << 1
	// StatusBP0 and StatusBP1 select the block-protection level.
	StatusBP0 Status = 1 << 2
	StatusBP1 Status = 1 << 3
	// StatusWriteProtectEnabled arms the hardware write-protect pin:
	// nonvolatile status bits reject writes while WPEN is set and the WP
	// line is held low.
	StatusWriteProtectEnabled Status = 1 << 7

	// StatusNonvolatileMask isolates the bits that persist across power
	// cycles (BP0, BP1, WPEN) and must round-trip through a status write.
	StatusNonvolatileMask Status = 0x8C
)

// WriteInProgress reports whether an internal write or erase cycle is
// still burning.
func (s Status) WriteInProgress() bool { return s&StatusWriteInProgress != 0 }

// WriteEnabled reports whether the write enable latch is set.
func (s Status) WriteEnabled() bool { return s&StatusWriteEnabled != 0 }

// WriteProtectEnabled reports whether the hardware write-protect pin is
// armed.
func (s Status) WriteProtectEnabled() bool { return s&StatusWriteProtectEnabled != 0 }

// Protection returns the block-protection level encoded in BP0/BP1.
func (s Status) Protection() ProtectionLevel {
	return ProtectionLevel((s >> 2) & 0x03)
}

// WithProtection returns s with the BP bits replaced by level.
func (s Status) WithProtection(level ProtectionLevel) Status {
	return (s &^ (StatusBP0 | StatusBP1)) | Status(level&0x03)<<2
}

// ProtectionLevel is one of the four nonvolatile block-protection levels.
// Each level write-protects a high sub-range of the address space.
type ProtectionLevel byte

const (
	// ProtectNone leaves the entire array writable (BP = 00).
	ProtectNone ProtectionLevel = 0x00
	// ProtectUpperQuarter protects the top quarter, 0x18000-0x1FFFF (BP = 01).
	ProtectUpperQuarter ProtectionLevel = 0x01
	// ProtectUpperHalf protects the top half, 0x10000-0x1FFFF (BP = 10).
	ProtectUpperHalf ProtectionLevel = 0x02
	// ProtectAll protects the entire array (BP = 11).
	ProtectAll ProtectionLevel = 0x03
)

// String implements fmt.Stringer.
func (p ProtectionLevel) String() string {
	switch p {
	case ProtectNone:
		return "none"
	case ProtectUpperQuarter:
		return "upper-quarter"
	case ProtectUpperHalf:
		return "upper-half"
	case ProtectAll:
		return "all"
	default:
		return "invalid"
	}
}

// unprotectedEnd returns the first protected address: everything at or
// above it rejects write and erase.
func (p ProtectionLevel) unprotectedEnd() uint32 {
	switch p {
	case ProtectNone:
		return Capacity
	case ProtectUpperQuarter:
		return Capacity - Capacity/4
	case ProtectUpperHalf:
		return Capacity - Capacity/2
	default:
		return 0
	}
}

// Protects reports whether address falls inside the protected range.
func (p ProtectionLevel) Protects(address uint32) bool {
	return address >= p.unprotectedEnd()
}

// ProtectsRange reports whether any byte of [address, address+n) falls
// inside the protected range.
func (p ProtectionLevel) ProtectsRange(address uint32, n int) bool {
	return n > 0 && address+uint32(n) > p.unprotectedEnd()
}
