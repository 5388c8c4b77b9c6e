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

import "time"

// Clock abstracts the delays the driver inserts: the settle time between
// driving a control line and reading it back, and the interval between
// write-in-progress polls. Hosts with real schedulers yield during the
// multi-millisecond completion wait instead of spinning; tests inject a
// no-op clock.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
