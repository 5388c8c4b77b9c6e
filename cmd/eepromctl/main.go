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

// eepromctl reads, writes and erases a 25AA1024 attached to a local SPI
// port.
//
// Examples:
//
//	eepromctl -op status
//	eepromctl -op read -addr 0x1000 -count 64
//	eepromctl -op write -addr 0x1000 -in data.bin
//	eepromctl -op erase-sector -addr 0x8000
//	eepromctl -op protect -level upper-half
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	aa1024 "github.com/spimemory/go-25aa1024"
	"github.com/spimemory/go-25aa1024/transport/spidev"
)

func main() {
	var (
		port   = flag.String("port", "", "SPI port name (empty picks the first available)")
		device = flag.Int("device", 0, "device index (0-3)")
		op     = flag.String("op", "status", "operation: read, write, erase-page, erase-sector, erase-chip, status, protect, wake, sleep")
		addr   = flag.Uint("addr", 0, "target address")
		count  = flag.Int("count", 256, "byte count for read")
		inFile = flag.String("in", "", "input file for write")
		level  = flag.String("level", "none", "protection level: none, upper-quarter, upper-half, all")
		hardWP = flag.Bool("hardwired-wp", false, "write-protect lines are strapped in hardware")
	)
	flag.Parse()

	tr, err := spidev.New(*port)
	if err != nil {
		log.Fatalf("open transport: %v", err)
	}

	var opts []aa1024.Option
	if *hardWP {
		opts = append(opts, aa1024.WithHardwiredWriteProtect())
	}
	ctrl, err := aa1024.New(tr, tr, opts...)
	if err != nil {
		log.Fatalf("create controller: %v", err)
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	dev, err := ctrl.Init(*device)
	if err != nil {
		log.Fatalf("init device %d: %v", *device, err)
	}

	if err := run(dev, *op, uint32(*addr), *count, *inFile, *level); err != nil {
		log.Fatalf("%s: %v", *op, err)
	}
}

func run(dev *aa1024.Device, op string, addr uint32, count int, inFile, level string) error {
	switch op {
	case "read":
		data, err := dev.Read(addr, count)
		if err != nil {
			return err
		}
		fmt.Print(hex.Dump(data))
		return nil
	case "write":
		data, err := os.ReadFile(inFile)
		if err != nil {
			return err
		}
		if err := dev.Write(addr, data); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes at 0x%06X\n", len(data), addr)
		return nil
	case "erase-page":
		return dev.ErasePage(addr)
	case "erase-sector":
		return dev.EraseSector(addr)
	case "erase-chip":
		return dev.EraseChip()
	case "status":
		status, err := dev.ReadStatus()
		if err != nil {
			return err
		}
		fmt.Printf("status: 0x%02X (wip=%v wel=%v wpen=%v protection=%s)\n",
			byte(status), status.WriteInProgress(), status.WriteEnabled(),
			status.WriteProtectEnabled(), status.Protection())
		return nil
	case "protect":
		lv, err := parseLevel(level)
		if err != nil {
			return err
		}
		return dev.SetProtection(lv)
	case "wake":
		return dev.Wake()
	case "sleep":
		return dev.Sleep()
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func parseLevel(s string) (aa1024.ProtectionLevel, error) {
	switch s {
	case "none":
		return aa1024.ProtectNone, nil
	case "upper-quarter":
		return aa1024.ProtectUpperQuarter, nil
	case "upper-half":
		return aa1024.ProtectUpperHalf, nil
	case "all":
		return aa1024.ProtectAll, nil
	default:
		return 0, fmt.Errorf("unknown protection level %q", s)
	}
}
