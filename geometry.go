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

// Device geometry. The 25AA1024 is a flat byte-addressable array of
// 131072 bytes, partitioned into 512 pages of 256 bytes and 4 sectors of
// 32 KiB.
const (
	// PageSize is the write granularity: a single framed WRITE must not
	// cross a page boundary.
	PageSize = 256
	// PageCount is the number of pages in the array.
	PageCount = 512
	// SectorSize is the erase granularity of the sector erase instruction.
	SectorSize = 32 * 1024
	// SectorCount is the number of sectors in the array.
	SectorCount = 4
	// Capacity is the total size of the array in bytes.
	Capacity = PageSize * PageCount
)

// AddressToPage returns the 0-based page containing address.
func AddressToPage(address uint32) (int, error) {
	page := int(address / PageSize)
	if page >= PageCount {
		return 0, fmt.Errorf("%w: address 0x%06X beyond page %d", ErrAddressRange, address, PageCount-1)
	}
	return page, nil
}

// AddressToSector returns the 0-based sector containing address.
func AddressToSector(address uint32) (int, error) {
	sector := int(address / SectorSize)
	if sector >= SectorCount {
		return 0, fmt.Errorf("%w: address 0x%06X beyond sector %d", ErrAddressRange, address, SectorCount-1)
	}
	return sector, nil
}

// pageRemaining returns how many bytes are left in the page containing
// address, i.e. the largest payload a single framed WRITE may carry from
// there.
func pageRemaining(address uint32) int {
	return PageSize - int(address%PageSize)
}

// pageSpan returns the number of page-confined sub-writes a write of n
// bytes starting at address splits into.
func pageSpan(address uint32, n int) int {
	if n <= 0 {
		return 0
	}
	first := pageRemaining(address)
	if n <= first {
		return 1
	}
	rest := n - first
	return 1 + (rest+PageSize-1)/PageSize
}
