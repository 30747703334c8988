// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import com "github.com/mus-format/common-go"

// Encoded elements take at least this many bytes, which bounds how long a
// decoded slice can be before anything is allocated.
const (
	minStringSize  = 1
	minFloat32Size = 4
)

func validateStringSliceLen(length, remaining int) error {
	return validateSliceLen(length, remaining, minStringSize)
}

func validateFloat32SliceLen(length, remaining int) error {
	return validateSliceLen(length, remaining, minFloat32Size)
}

func validateSliceLen(length, remaining, elemSize int) error {
	if length < 0 {
		return com.ErrNegativeLength
	}
	if length > remaining/elemSize {
		return com.ErrTooLargeLength
	}
	return nil
}
