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

// 25AA1024 instruction set (datasheet Table 2-1). Every instruction is a
// single octet; READ, WRITE, page erase, sector erase and the wake
// instruction are followed by a 24-bit big-endian address.
const (
	cmdRead          byte = 0x03 // read data beginning at selected address
	cmdWrite         byte = 0x02 // write data beginning at selected address
	cmdWriteEnable   byte = 0x06 // WREN: set the write enable latch
	cmdWriteDisable  byte = 0x04 // WRDI: reset the write enable latch
	cmdReadStatus    byte = 0x05 // RDSR: read STATUS register
	cmdWriteStatus   byte = 0x01 // WRSR: write STATUS register
	cmdPageErase     byte = 0x42 // erase one 256-byte page
	cmdSectorErase   byte = 0xD8 // erase one 32 KiB sector
	cmdChipErase     byte = 0xC7 // erase the entire array
	cmdWake          byte = 0xAB // release from deep power-down, read signature
	cmdDeepPowerDown byte = 0xB9 // enter deep power-down mode
)

// Signature is the electronic signature the device clocks out in response
// to the wake instruction. Anything else means the wrong part, a missing
// part, or a miswired bus.
const Signature byte = 0x29

// wakeDummyAddress is the 24-bit dummy address clocked out with the wake
// instruction. The device ignores the value.
const wakeDummyAddress uint32 = 0x00A5A5A5
