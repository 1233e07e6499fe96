// Copyright 2024 The CXQUERY Authors
//   This file is part of CXQUERY.
//
//  CXQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXQUERY.  If not, see <https://www.gnu.org/licenses/>.

package merror

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorContainsPath(t *testing.T) {
	err := StoreError{Path: "/data/projects/x/db.sqlite3", Err: os.ErrNotExist}
	assert.Contains(t, err.Error(), "/data/projects/x/db.sqlite3")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(InputError{Msg: "missing form"}))
	assert.True(t, IsUserError(NotFoundError{Msg: "project not found"}))
	assert.False(t, IsUserError(InternalError{Msg: "boom"}))
	assert.False(t, IsUserError(errors.New("plain")))
	assert.True(t, IsUserError(fmt.Errorf("failed to run: %w", InputError{Msg: "bad limit"})))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("open: %w", NotFoundError{Msg: "project not found"})))
	assert.False(t, IsNotFound(InputError{Msg: "bad"}))
}

func TestPanicValueToErr(t *testing.T) {
	assert.EqualError(t, PanicValueToErr("oops"), "recovered panic: oops")
	assert.EqualError(t, PanicValueToErr(42), "recovered panic from an error of type int")
	inner := errors.New("inner")
	assert.True(t, errors.Is(PanicValueToErr(inner), inner))
}

func TestInputErrorMarshal(t *testing.T) {
	data, err := InputError{Msg: "bad"}.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"bad"`, string(data))
	data, err = InputError{}.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
