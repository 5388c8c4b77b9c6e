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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/spimemory/go-25aa1024/internal/testing"
)

// newTestDevice builds an initialized device over a mock bus with a
// single virtual chip on CS0/WP0 and all delays disabled.
func newTestDevice(t *testing.T) (*Device, *MockTransport, *testutil.VirtualEEPROM) {
	t.Helper()

	mock := NewMockTransport()
	chip := mock.AddChip("CS0", "WP0")

	ctrl, err := New(mock, mock, WithClock(noopClock{}))
	require.NoError(t, err)

	dev, err := ctrl.Init(0)
	require.NoError(t, err)
	return dev, mock, chip
}

func TestDevice_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address uint32
		length  int
	}{
		{name: "Single_Byte", address: 0x000010, length: 1},
		{name: "Within_One_Page", address: 0x000100, length: 64},
		{name: "Exactly_One_Page", address: 0x000200, length: PageSize},
		{name: "Crossing_One_Boundary", address: 0x0003F0, length: 32},
		{name: "Crossing_Several_Boundaries", address: 0x0004FE, length: 3*PageSize + 7},
		{name: "Last_Byte_Of_Array", address: Capacity - 1, length: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dev, _, _ := newTestDevice(t)

			data := make([]byte, tt.length)
			for i := range data {
				data[i] = byte(i * 7)
			}

			require.NoError(t, dev.Write(tt.address, data))

			got, err := dev.Read(tt.address, tt.length)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestDevice_Write_SplitsAtPageBoundary(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	// 32 bytes starting 16 before a page boundary span pages 0 and 1.
	const address = uint32(0x0000F0)
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(0xA0 + i)
	}

	require.NoError(t, dev.Write(address, data))

	// Exactly two write-enable handshakes and two framed writes, each
	// confined to its page.
	assert.Equal(t, 2, chip.OpcodeCount(testutil.CmdWriteEnable))

	writes := chip.FramesWithOpcode(testutil.CmdWrite)
	require.Len(t, writes, 2)

	first, second := writes[0].Bytes, writes[1].Bytes
	assert.Equal(t, []byte{testutil.CmdWrite, 0x00, 0x00, 0xF0}, first[:4])
	assert.Equal(t, data[:16], first[4:])
	assert.Equal(t, []byte{testutil.CmdWrite, 0x00, 0x01, 0x00}, second[:4])
	assert.Equal(t, data[16:], second[4:])
}

func TestDevice_Write_EachPagePolledToCompletion(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	// Two busy polls per burn, so each page write needs three status
	// reads (two busy, one clear).
	chip.BusyPolls = 2
	statusBefore := chip.OpcodeCount(testutil.CmdReadStatus)

	require.NoError(t, dev.Write(0x0000F0, make([]byte, 32)))

	assert.Equal(t, 6, chip.OpcodeCount(testutil.CmdReadStatus)-statusBefore)
}

func TestDevice_Write_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		setup   func(*Device, *testutil.VirtualEEPROM)
		name    string
		address uint32
		length  int
	}{
		{
			name:    "Address_Beyond_Capacity",
			address: Capacity,
			length:  1,
			wantErr: ErrAddressRange,
		},
		{
			name:    "Range_Beyond_Capacity",
			address: Capacity - 4,
			length:  8,
			wantErr: ErrAddressRange,
		},
		{
			name:    "Range_Inside_Protected_Region",
			address: Capacity - PageSize,
			length:  16,
			setup: func(d *Device, _ *testutil.VirtualEEPROM) {
				d.protection = ProtectUpperQuarter
			},
			wantErr: ErrWriteProtected,
		},
		{
			name:    "Range_Ending_Inside_Protected_Region",
			address: Capacity - Capacity/4 - 8,
			length:  16,
			setup: func(d *Device, _ *testutil.VirtualEEPROM) {
				d.protection = ProtectUpperQuarter
			},
			wantErr: ErrWriteProtected,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dev, mock, chip := newTestDevice(t)
			if tt.setup != nil {
				tt.setup(dev, chip)
			}

			before := mock.TransferCount()
			err := dev.Write(tt.address, make([]byte, tt.length))
			require.ErrorIs(t, err, tt.wantErr)

			// Validation failures issue zero bus transactions.
			assert.Equal(t, before, mock.TransferCount())
		})
	}
}

func TestDevice_Write_ReportsPartialProgress(t *testing.T) {
	t.Parallel()

	dev, mock, chip := newTestDevice(t)

	// Fail the bus as soon as the second page's handshake begins.
	mock.FailAfterPageWrites = 1

	err := dev.Write(0x0000F0, make([]byte, 32))
	require.ErrorIs(t, err, ErrTransportWrite)
	assert.ErrorContains(t, err, "after 1 of 2 page writes")

	// The first page was programmed, the second never framed.
	assert.Len(t, chip.FramesWithOpcode(testutil.CmdWrite), 1)
}

func TestDevice_WriteContext_Canceled(t *testing.T) {
	t.Parallel()

	dev, mock, _ := newTestDevice(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := mock.TransferCount()
	err := dev.WriteContext(ctx, 0x0000F0, make([]byte, 32))
	require.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "after 0 of 2 page writes")
	assert.Equal(t, before, mock.TransferCount())
}

func TestDevice_Read_WrapsAtCapacity(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	// Tail of the array and start of the array carry distinct patterns.
	for i := uint32(0); i < 5; i++ {
		chip.Memory[Capacity-5+i] = byte(0xE0 + i)
		chip.Memory[i] = byte(0x10 + i)
	}

	got, err := dev.Read(Capacity-5, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE0, 0xE1, 0xE2, 0xE3, 0xE4, 0x10, 0x11, 0x12, 0x13, 0x14}, got)
}

func TestDevice_Read_Validation(t *testing.T) {
	t.Parallel()

	dev, mock, _ := newTestDevice(t)

	before := mock.TransferCount()

	_, err := dev.Read(Capacity, 1)
	require.ErrorIs(t, err, ErrAddressRange)

	_, err = dev.Read(0, -1)
	require.ErrorIs(t, err, ErrAddressRange)

	assert.Equal(t, before, mock.TransferCount())
}

func TestDevice_Read_ZeroCount(t *testing.T) {
	t.Parallel()

	dev, _, _ := newTestDevice(t)

	got, err := dev.Read(0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDevice_ErasePage(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	data := make([]byte, PageSize)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, dev.Write(0x000400, data))
	require.NoError(t, dev.ErasePage(0x000410))

	got, err := dev.Read(0x000400, PageSize)
	require.NoError(t, err)
	for i, b := range got {
		require.Equalf(t, byte(0xFF), b, "offset %d not erased", i)
	}

	// The erase was write-enabled and polled like any other burn.
	assert.Equal(t, 1, chip.OpcodeCount(testutil.CmdPageErase))
}

func TestDevice_EraseSector(t *testing.T) {
	t.Parallel()

	dev, _, _ := newTestDevice(t)

	require.NoError(t, dev.Write(0x008000, []byte{1, 2, 3, 4}))
	require.NoError(t, dev.EraseSector(0x008000))

	got, err := dev.Read(0x008000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, got)
}

func TestDevice_EraseChip(t *testing.T) {
	t.Parallel()

	dev, _, _ := newTestDevice(t)

	require.NoError(t, dev.Write(0x000000, []byte{1}))
	require.NoError(t, dev.Write(0x01FF00, []byte{2}))
	require.NoError(t, dev.EraseChip())

	for _, addr := range []uint32{0x000000, 0x01FF00} {
		got, err := dev.Read(addr, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF}, got)
	}
}

func TestDevice_Erase_ProtectedRegionRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		erase func(*Device) error
		name  string
		level ProtectionLevel
	}{
		{
			name:  "Page_In_Upper_Quarter",
			level: ProtectUpperQuarter,
			erase: func(d *Device) error {
				return d.ErasePage(Capacity - PageSize)
			},
		},
		{
			name:  "Sector_In_Upper_Half",
			level: ProtectUpperHalf,
			erase: func(d *Device) error {
				return d.EraseSector(Capacity - SectorSize)
			},
		},
		{
			name:  "Chip_With_Any_Protection",
			level: ProtectUpperQuarter,
			erase: func(d *Device) error {
				return d.EraseChip()
			},
		},
		{
			name:  "Everything_Protected",
			level: ProtectAll,
			erase: func(d *Device) error {
				return d.ErasePage(0)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			chip := mock.AddChip("CS0", "WP0")
			chip.Status = byte(Status(0).WithProtection(tt.level))

			ctrl, err := New(mock, mock, WithClock(noopClock{}))
			require.NoError(t, err)
			dev, err := ctrl.Init(0)
			require.NoError(t, err)
			require.Equal(t, tt.level, dev.Protection())

			before := mock.TransferCount()
			err = tt.erase(dev)
			require.ErrorIs(t, err, ErrWriteProtected)

			// Rejected before any bus transaction.
			assert.Equal(t, before, mock.TransferCount())
		})
	}
}

func TestDevice_Erase_UnprotectedBelowBoundary(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)
	require.NoError(t, dev.SetProtection(ProtectUpperHalf))

	// Just below the protected boundary is still erasable.
	require.NoError(t, dev.ErasePage(Capacity/2-PageSize))
	assert.Equal(t, 1, chip.OpcodeCount(testutil.CmdPageErase))
}

func TestDevice_CompletionPoll_TimesOut(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	// The chip never reports completion.
	chip.BusyPolls = -1

	err := dev.Write(0x000000, []byte{0x55})
	require.ErrorIs(t, err, ErrWriteTimeout)
	assert.ErrorContains(t, err, "after 0 of 1 page writes")
}

func TestDevice_ReadStatus(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)
	chip.Status |= byte(StatusWriteProtectEnabled)

	status, err := dev.ReadStatus()
	require.NoError(t, err)
	assert.True(t, status.WriteProtectEnabled())
	assert.False(t, status.WriteInProgress())
}

func TestDevice_ReadStatus_RefreshesProtectionCache(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)
	require.Equal(t, ProtectNone, dev.Protection())

	// Protection changed behind the driver's back (e.g. by another
	// host); a status read resynchronizes the cache.
	chip.Status = byte(Status(0).WithProtection(ProtectUpperHalf))

	_, err := dev.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, ProtectUpperHalf, dev.Protection())
}

func TestDevice_WriteStatus_RoundTrips(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	value := Status(0).WithProtection(ProtectUpperQuarter) | StatusWriteProtectEnabled
	require.NoError(t, dev.WriteStatus(value))

	assert.Equal(t, byte(value)&testutil.NonvolatileMask, chip.Status&testutil.NonvolatileMask)
	assert.Equal(t, ProtectUpperQuarter, dev.Protection())
}

func TestDevice_WriteStatus_HardwareProtectReportsMismatch(t *testing.T) {
	t.Parallel()

	// Hardwired write-protect strapped low with WPEN set: the device
	// completes the exchange but silently discards the update.
	mock := NewMockTransport()
	chip := mock.AddChip("CS0", "")
	chip.Status = byte(StatusWriteProtectEnabled)
	chip.SetWriteProtect(false)

	ctrl, err := New(mock, mock, WithClock(noopClock{}), WithHardwiredWriteProtect())
	require.NoError(t, err)
	dev, err := ctrl.Init(0)
	require.NoError(t, err)

	err = dev.WriteStatus(Status(0).WithProtection(ProtectUpperHalf) | StatusWriteProtectEnabled)
	require.ErrorIs(t, err, ErrStatusMismatch)

	// The bus exchange did happen; only the verification failed.
	assert.Equal(t, 1, chip.OpcodeCount(testutil.CmdWriteStatus))
	assert.Equal(t, ProtectNone, dev.Protection())
}

func TestDevice_SetProtection_PreservesOtherBits(t *testing.T) {
	t.Parallel()

	dev, _, _ := newTestDevice(t)

	require.NoError(t, dev.WriteStatus(StatusWriteProtectEnabled))
	require.NoError(t, dev.SetProtection(ProtectUpperHalf))

	status, err := dev.ReadStatus()
	require.NoError(t, err)
	assert.True(t, status.WriteProtectEnabled())
	assert.Equal(t, ProtectUpperHalf, status.Protection())
}

func TestDevice_Wake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		signature byte
		wantErr   bool
	}{
		{name: "Correct_Signature", signature: Signature, wantErr: false},
		{name: "Wrong_Signature", signature: 0x15, wantErr: true},
		{name: "Bus_Floating", signature: 0xFF, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dev, mock, chip := newTestDevice(t)
			chip.Signature = tt.signature

			err := dev.Wake()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSignatureMismatch)
			} else {
				require.NoError(t, err)
			}

			// Wake leaves the device deselected either way.
			high, readErr := mock.ReadLine("CS0")
			require.NoError(t, readErr)
			assert.True(t, high)
		})
	}
}

func TestDevice_SleepAndWake(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	require.NoError(t, dev.Write(0x000040, []byte{0xAA}))
	require.NoError(t, dev.Sleep())
	assert.Equal(t, 1, chip.OpcodeCount(testutil.CmdDeepPowerDown))

	// Asleep, the device ignores reads and the bus floats high.
	got, err := dev.Read(0x000040, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, got)

	// Wake releases it.
	require.NoError(t, dev.Wake())
	got, err = dev.Read(0x000040, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, got)
}

func TestDevice_WriteEnableConsumedPerPage(t *testing.T) {
	t.Parallel()

	dev, _, chip := newTestDevice(t)

	// Three pages, three handshakes.
	require.NoError(t, dev.Write(0x000000, make([]byte, 3*PageSize)))
	assert.Equal(t, 3, chip.OpcodeCount(testutil.CmdWriteEnable))
	assert.Len(t, chip.FramesWithOpcode(testutil.CmdWrite), 3)
}

func TestDevice_TransportFailureAborts(t *testing.T) {
	t.Parallel()

	dev, mock, _ := newTestDevice(t)
	mock.TransferErr = errInjectedTransfer

	_, err := dev.Read(0, 4)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	// The device was left deselected.
	high, readErr := mock.ReadLine("CS0")
	require.NoError(t, readErr)
	assert.True(t, high)
}

func TestDevice_BusBusyGuard(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.AddChip("CS0", "WP0")
	mock.AddChip("CS1", "WP1")

	ctrl, err := New(mock, mock, WithClock(noopClock{}))
	require.NoError(t, err)

	dev0, err := ctrl.Init(0)
	require.NoError(t, err)
	dev1, err := ctrl.Init(1)
	require.NoError(t, err)

	// Leave dev0 mid-transaction via the selected-on-return status
	// primitive, then try to frame on dev1.
	_, err = dev0.readStatus()
	require.NoError(t, err)

	_, err = dev1.Read(0, 1)
	require.ErrorIs(t, err, ErrBusBusy)

	require.NoError(t, dev0.endTransaction())
	_, err = dev1.Read(0, 1)
	require.NoError(t, err)
}

func TestDevice_ReadStatusPrimitive_LeavesSelected(t *testing.T) {
	t.Parallel()

	dev, mock, _ := newTestDevice(t)

	_, err := dev.readStatus()
	require.NoError(t, err)

	high, readErr := mock.ReadLine("CS0")
	require.NoError(t, readErr)
	assert.False(t, high, "status primitive must leave select asserted")

	require.NoError(t, dev.endTransaction())
}
