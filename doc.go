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

// Package aa1024 is a host-side driver for the Microchip 25AA1024 1-Mbit
// SPI serial EEPROM.
//
// The package sequences logical operations (read, write, erase, status and
// power-mode changes) into exact framed SPI transactions and enforces the
// protocol discipline the device demands: the write-enable handshake before
// every mutating command, page-boundary-aware write splitting, bounded
// write-in-progress completion polling, block-protection validation before
// any erase or write, and read-back verification of the chip-select and
// write-protect control lines.
//
// Raw bus signaling is out of scope. A backend supplies two small
// primitives: a full-duplex single-octet exchange (Transport) and digital
// control of the select/write-protect lines with read-back (PinController).
// Production backends live in transport/spidev (periph.io) and
// transport/serialbridge (USB serial SPI bridges); a behavioral mock for
// tests ships with the package itself.
//
// Basic usage:
//
//	ctrl, err := aa1024.New(tr, tr)
//	if err != nil { ... }
//	dev, err := ctrl.Init(0)
//	if err != nil { ... }
//	data, err := dev.Read(0x1000, 64)
//
// Controller and Device are not safe for concurrent use. The bus and its
// control lines are a single shared resource; callers must serialize all
// operations, across devices too, with external synchronization.
package aa1024
