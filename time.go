// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

import "time"

// now is a closure used to produce the current time.
// By default, time.Now is used.
type now func() time.Time
