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

// Package testing provides a behavioral model of the 25AA1024 for driver
// tests: a virtual chip that decodes framed instructions octet by octet
// and applies their effects when select is raised, exactly like the real
// part.
package testing

// Chip geometry and instruction constants, kept local so the model does
// not depend on the driver package it is used to test.
const (
	Capacity   = 131072
	PageSize   = 256
	SectorSize = 32768

	DefaultSignature = 0x29
)

// Instruction set.
const (
	CmdRead          byte = 0x03
	CmdWrite         byte = 0x02
	CmdWriteEnable   byte = 0x06
	CmdWriteDisable  byte = 0x04
	CmdReadStatus    byte = 0x05
	CmdWriteStatus   byte = 0x01
	CmdPageErase     byte = 0x42
	CmdSectorErase   byte = 0xD8
	CmdChipErase     byte = 0xC7
	CmdWake          byte = 0xAB
	CmdDeepPowerDown byte = 0xB9
)

// Status register bits.
const (
	StatusWIP       byte = 0x01
	StatusWEL       byte = 0x02
	StatusBPMask    byte = 0x0C
	StatusWPEN      byte = 0x80
	NonvolatileMask byte = 0x8C
)

// Frame is one completed bus transaction: every octet the host clocked
// out between select falling and rising.
type Frame struct {
	Bytes []byte
}

// Opcode returns the instruction octet of the frame.
func (f Frame) Opcode() byte {
	if len(f.Bytes) == 0 {
		return 0
	}
	return f.Bytes[0]
}

// VirtualEEPROM models one 25AA1024. Drive it through SetSelect,
// SetWriteProtect and Exchange; inspect Memory, Status and the Frames log
// afterwards.
type VirtualEEPROM struct {
	// Memory is the 128 KiB array.
	Memory []byte
	// Status is the STATUS register. Tests may preset the BP or WPEN
	// bits directly.
	Status byte
	// Signature is returned by the wake instruction.
	Signature byte
	// BusyPolls is how many status reads observe write-in-progress after
	// each accepted write or erase. Zero completes instantly; negative
	// keeps the bit set forever (a stuck device).
	BusyPolls int
	// Frames logs every completed transaction.
	Frames []Frame
	// Exchanges counts octets exchanged while selected.
	Exchanges int

	frame      []byte
	readPtr    uint32
	busyLeft   int
	neverReady bool
	selected   bool
	asleep     bool
	wpPinHigh  bool
}

// NewVirtualEEPROM returns a blank (all 0xFF) chip in standby, write
// protect pin high, with a two-poll burn time.
func NewVirtualEEPROM() *VirtualEEPROM {
	mem := make([]byte, Capacity)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &VirtualEEPROM{
		Memory:    mem,
		Signature: DefaultSignature,
		BusyPolls: 2,
		wpPinHigh: true,
	}
}

// SetSelect drives the select line level (true = high = deselected).
// Raising select completes the pending frame and applies its effects.
func (v *VirtualEEPROM) SetSelect(high bool) {
	if !high {
		if !v.selected {
			v.selected = true
			v.frame = nil
		}
		return
	}
	if !v.selected {
		return
	}
	v.selected = false
	if len(v.frame) > 0 {
		v.execute()
		v.Frames = append(v.Frames, Frame{Bytes: append([]byte(nil), v.frame...)})
	}
	v.frame = nil
}

// SetWriteProtect drives the write-protect pin level. Hardware write
// protection is active while the pin is low and WPEN is set.
func (v *VirtualEEPROM) SetWriteProtect(high bool) {
	v.wpPinHigh = high
}

// Exchange clocks one octet in and returns the octet the chip clocks out
// in the same cycle.
func (v *VirtualEEPROM) Exchange(tx byte) byte {
	if !v.selected {
		return 0xFF
	}
	v.Exchanges++
	v.frame = append(v.frame, tx)

	op := v.frame[0]
	n := len(v.frame)

	if v.asleep && op != CmdWake {
		return 0xFF
	}

	switch op {
	case CmdRead:
		if n == 4 {
			v.readPtr = addr24(v.frame[1:4]) % Capacity
		}
		if n >= 5 {
			// The address pointer auto-increments and rolls over at the
			// top of the array.
			b := v.Memory[v.readPtr]
			v.readPtr = (v.readPtr + 1) % Capacity
			return b
		}
	case CmdReadStatus:
		if n >= 2 {
			s := v.Status
			v.tickBusy()
			return s
		}
	case CmdWake:
		if n >= 5 {
			v.asleep = false
			return v.Signature
		}
	}
	return 0xFF
}

// OpcodeCount returns how many completed frames carried the given
// instruction.
func (v *VirtualEEPROM) OpcodeCount(op byte) int {
	count := 0
	for _, f := range v.Frames {
		if f.Opcode() == op {
			count++
		}
	}
	return count
}

// FramesWithOpcode returns the completed frames carrying the given
// instruction.
func (v *VirtualEEPROM) FramesWithOpcode(op byte) []Frame {
	var frames []Frame
	for _, f := range v.Frames {
		if f.Opcode() == op {
			frames = append(frames, f)
		}
	}
	return frames
}

// execute applies the effect of the completed frame. Mutating
// instructions register only on select rising, and only when the write
// enable latch is set and no burn is in progress.
func (v *VirtualEEPROM) execute() {
	op := v.frame[0]

	if v.asleep {
		return
	}
	if v.Status&StatusWIP != 0 && op != CmdReadStatus && op != CmdRead {
		return
	}

	switch op {
	case CmdWriteEnable:
		if len(v.frame) == 1 {
			v.Status |= StatusWEL
		}
	case CmdWriteDisable:
		if len(v.frame) == 1 {
			v.Status &^= StatusWEL
		}
	case CmdWrite:
		v.executeWrite()
	case CmdWriteStatus:
		v.executeWriteStatus()
	case CmdPageErase:
		v.executeErase(PageSize)
	case CmdSectorErase:
		v.executeErase(SectorSize)
	case CmdChipErase:
		if len(v.frame) != 1 || v.Status&StatusWEL == 0 {
			return
		}
		v.Status &^= StatusWEL
		if v.Status&StatusBPMask != 0 {
			// Chip erase is ignored while any block protection is set.
			return
		}
		for i := range v.Memory {
			v.Memory[i] = 0xFF
		}
		v.burn()
	case CmdDeepPowerDown:
		if len(v.frame) == 1 {
			v.asleep = true
		}
	}
}

func (v *VirtualEEPROM) executeWrite() {
	if len(v.frame) < 5 || v.Status&StatusWEL == 0 {
		return
	}
	v.Status &^= StatusWEL

	addr := addr24(v.frame[1:4]) % Capacity
	payload := v.frame[4:]
	if v.protects(addr) || v.protects(addr+uint32(len(payload))-1) {
		return
	}

	// The real part does not advance past a page boundary: excess bytes
	// wrap within the page and clobber its start. Modeled faithfully so
	// a driver that fails to split writes corrupts data here too.
	pageStart := addr &^ (PageSize - 1)
	offset := addr & (PageSize - 1)
	for i, b := range payload {
		v.Memory[pageStart+(offset+uint32(i))%PageSize] = b
	}
	v.burn()
}

func (v *VirtualEEPROM) executeWriteStatus() {
	if len(v.frame) < 2 || v.Status&StatusWEL == 0 {
		return
	}
	v.Status &^= StatusWEL

	if v.Status&StatusWPEN != 0 && !v.wpPinHigh {
		// Hardware write protection: the update is silently discarded.
		return
	}
	v.Status = (v.Status &^ NonvolatileMask) | (v.frame[1] & NonvolatileMask)
	v.burn()
}

func (v *VirtualEEPROM) executeErase(unit uint32) {
	if len(v.frame) != 4 || v.Status&StatusWEL == 0 {
		return
	}
	v.Status &^= StatusWEL

	addr := addr24(v.frame[1:4]) % Capacity
	if v.protects(addr) {
		return
	}
	start := addr &^ (unit - 1)
	for i := start; i < start+unit; i++ {
		v.Memory[i] = 0xFF
	}
	v.burn()
}

// burn starts an internal write cycle: write-in-progress stays set for
// the next BusyPolls status reads.
func (v *VirtualEEPROM) burn() {
	if v.BusyPolls == 0 {
		return
	}
	v.Status |= StatusWIP
	if v.BusyPolls < 0 {
		v.neverReady = true
		return
	}
	v.busyLeft = v.BusyPolls
}

func (v *VirtualEEPROM) tickBusy() {
	if v.Status&StatusWIP == 0 || v.neverReady {
		return
	}
	v.busyLeft--
	if v.busyLeft <= 0 {
		v.Status &^= StatusWIP
	}
}

// protects reports whether addr falls in the range protected by the
// current BP bits.
func (v *VirtualEEPROM) protects(addr uint32) bool {
	switch (v.Status & StatusBPMask) >> 2 {
	case 0:
		return false
	case 1:
		return addr >= Capacity-Capacity/4
	case 2:
		return addr >= Capacity-Capacity/2
	default:
		return true
	}
}

func addr24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
