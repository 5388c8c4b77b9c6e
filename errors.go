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
	"fmt"
)

// ErrorType classifies a failure so callers can decide whether retrying a
// whole operation makes sense. The driver itself never retries: a retry
// must redo the write-enable handshake and revalidate protection, and only
// the caller can sequence that safely.
type ErrorType string

const (
	// ErrorTypeTransient indicates a bus-level failure that may succeed
	// if the whole operation is retried.
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypePermanent indicates a failure that will not go away on its
	// own.
	ErrorTypePermanent ErrorType = "permanent"
	// ErrorTypeTimeout indicates the device stopped responding within the
	// configured bound.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeVerification indicates the bus worked but the device did
	// not accept or reflect the requested change.
	ErrorTypeVerification ErrorType = "verification"
	// ErrorTypeValidation indicates the request was rejected before any
	// bus activity.
	ErrorTypeValidation ErrorType = "validation"
)

// Transport failures: the byte exchange or pin drive itself failed.
var (
	// ErrTransportWrite indicates a failed octet transmission.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportRead indicates a failed octet reception.
	ErrTransportRead = errors.New("transport read failed")
	// ErrBusBusy indicates a framing hazard: a transaction was started
	// while another device on the shared bus was still selected.
	ErrBusBusy = errors.New("another device is selected on the bus")
)

// Verification failures: the bus worked, the device disagreed.
var (
	// ErrLineStuck indicates a control line read back a level different
	// from the one driven (floating, shorted, or toggled before settling).
	ErrLineStuck = errors.New("control line readback mismatch")
	// ErrSignatureMismatch indicates the wake instruction returned an
	// electronic signature other than Signature.
	ErrSignatureMismatch = errors.New("electronic signature mismatch")
	// ErrStatusMismatch indicates a status write whose nonvolatile bits
	// did not round-trip, typically because hardware write protection
	// silently discarded the update.
	ErrStatusMismatch = errors.New("status register verification failed")
)

// Validation failures: rejected before any bus transaction.
var (
	// ErrAddressRange indicates an address or length outside the array.
	ErrAddressRange = errors.New("address out of range")
	// ErrWriteProtected indicates the target range falls inside the
	// currently block-protected region.
	ErrWriteProtected = errors.New("target range is block-protected")
	// ErrInvalidDevice indicates a device index outside the registry.
	ErrInvalidDevice = errors.New("invalid device index")
	// ErrNotInitialized indicates the device has not been initialized.
	ErrNotInitialized = errors.New("device not initialized")
)

// ErrWriteTimeout indicates the write-in-progress bit never cleared within
// the configured poll budget: the device is unresponsive or was removed,
// as opposed to still legitimately busy.
var ErrWriteTimeout = errors.New("write-in-progress poll exceeded bound")

// TransportError wraps a failure of the transport or pin-control layer
// with the operation and device it occurred on.
type TransportError struct {
	Err       error
	Op        string
	Device    string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Device, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with retryability derived
// from the error type.
func NewTransportError(op, device string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Device:    device,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError for an unresponsive device.
func NewTimeoutError(op, device string) *TransportError {
	return NewTransportError(op, device, ErrWriteTimeout, ErrorTypeTimeout)
}

// IsRetryable reports whether retrying the whole logical operation might
// succeed. Validation and verification failures are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrBusBusy),
		errors.Is(err, ErrWriteTimeout):
		return true
	default:
		return false
	}
}

// GetErrorType classifies err into an ErrorType.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrWriteTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrBusBusy):
		return ErrorTypeTransient
	case errors.Is(err, ErrLineStuck),
		errors.Is(err, ErrSignatureMismatch),
		errors.Is(err, ErrStatusMismatch):
		return ErrorTypeVerification
	case errors.Is(err, ErrAddressRange),
		errors.Is(err, ErrWriteProtected),
		errors.Is(err, ErrInvalidDevice),
		errors.Is(err, ErrNotInitialized):
		return ErrorTypeValidation
	default:
		return ErrorTypePermanent
	}
}
