// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a business rule violation. The whole operation that returned it
// has been rolled back.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrProductNotInitialized        = New("product not initialized")
	ErrProductAlreadyInitialized    = New("product already initialized")
	ErrProductDeprecated            = New("product deprecated")
	ErrTargetWeightTooHigh          = New("target weight too high")
	ErrTotalTargetWeightExceeded    = New("total target weight exceeded")
	ErrTotalEffectiveWeightExceeded = New("total effective weight exceeded")
	ErrInsufficientCapacity         = New("insufficient capacity")
	ErrInsufficientAllocation       = New("insufficient allocation")
	ErrInvalidTime                  = New("invalid time")
	ErrInvalidTranche               = New("invalid tranche")
	ErrInvalidPeriod                = New("invalid period")
	ErrZeroAmount                   = New("zero amount")
)
