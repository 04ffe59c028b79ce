/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package futurevalue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// valueHolder holds the actual value
type valueHolder struct {
	value interface{}
	err   error
}

// Value implements a Future Value that is set once (and only once) by a
// producer while any number of Go routines wait for it with Get.
// The first call to Set wins; later calls are ignored.
type Value struct {
	ref  unsafe.Pointer
	once sync.Once
	done chan struct{}
}

// New returns a new future value
func New() *Value {
	return &Value{done: make(chan struct{})}
}

// Set resolves the future with the given value and error. It returns false
// if the future had already been resolved.
func (f *Value) Set(value interface{}, err error) bool {
	set := false
	f.once.Do(func() {
		holder := &valueHolder{value: value, err: err}
		atomic.StorePointer(&f.ref, unsafe.Pointer(holder)) //nolint
		close(f.done)
		set = true
	})
	return set
}

// Get waits until the value is set or ctx is done and returns the value
// and/or error it was resolved with.
func (f *Value) Get(ctx context.Context) (interface{}, error) {
	if ok, value, err := f.get(); ok {
		return value, err
	}

	select {
	case <-f.done:
		_, value, err := f.get()
		return value, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// MustGet returns the value. If the future was resolved with an error
// then this function will panic.
func (f *Value) MustGet() interface{} {
	value, err := f.Get(context.Background())
	if err != nil {
		panic(fmt.Sprintf("get returned error: %s", err))
	}
	return value
}

// Done returns a channel that is closed once the value is set
func (f *Value) Done() <-chan struct{} {
	return f.done
}

// IsSet returns true if the value has been set, otherwise false is returned
func (f *Value) IsSet() bool {
	return atomic.LoadPointer(&f.ref) != nil
}

func (f *Value) get() (bool, interface{}, error) {
	p := atomic.LoadPointer(&f.ref)
	if p == nil {
		return false, nil, nil
	}
	holder := (*valueHolder)(p)
	return true, holder.value, holder.err
}
