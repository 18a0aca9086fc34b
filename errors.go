// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import "fmt"

// KeyExistsError is returned by AssocStrict when the key is already
// present in the map. No state is mutated when this error is returned.
type KeyExistsError[K any] struct {
	Key K
}

func (e KeyExistsError[K]) Error() string {
	return fmt.Sprintf("phamt: key %v already present", e.Key)
}

// TransientPublishedError is returned by any Transient operation issued
// after Persistent has already been called on it once.
type TransientPublishedError struct{}

func (TransientPublishedError) Error() string {
	return "phamt: transient used after persistent"
}

// NotOwnerError is the error kind for a Transient operation attempted by
// anything other than its original owner. No Transient method returns it:
// a Transient does not record or check which goroutine calls it.
type NotOwnerError struct{}

func (NotOwnerError) Error() string {
	return "phamt: non-owner access to transient"
}
