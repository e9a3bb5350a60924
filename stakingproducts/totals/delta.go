// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package totals

// Delta collects the changes of one operation to the pool aggregates.
type Delta struct {
	TargetIncrease    uint64
	TargetDecrease    uint64
	EffectiveIncrease uint64
	EffectiveDecrease uint64
}

func NewDelta() *Delta {
	return &Delta{}
}

// Target records a target weight change from old to updated.
func (d *Delta) Target(old, updated uint64) *Delta {
	if updated > old {
		d.TargetIncrease += updated - old
	} else {
		d.TargetDecrease += old - updated
	}
	return d
}

// Effective records an effective weight change from old to updated.
func (d *Delta) Effective(old, updated uint64) *Delta {
	if updated > old {
		d.EffectiveIncrease += updated - old
	} else {
		d.EffectiveDecrease += old - updated
	}
	return d
}

func (d *Delta) IsEmpty() bool {
	return d.TargetIncrease == d.TargetDecrease && d.EffectiveIncrease == d.EffectiveDecrease
}
