// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mutual

// Config is the configurable parameters of the pools. All parameters have default values and
// are 'locked' for production deployments. For testing purposes or simulations, the parameters can be updated.

var (
	trancheDuration           = TrancheDuration
	allocationUnit            = AllocationUnit
	defaultCapacityMultiplier = DefaultCapacityMultiplier
	maxTotalEffectiveWeight   = MaxTotalEffectiveWeight

	locked bool
)

type Config struct {
	TrancheDuration           uint64 `yaml:"trancheDuration"`           // seconds an allocation tranche stays active.
	AllocationUnit            uint64 `yaml:"allocationUnit"`            // base units per allocation unit.
	DefaultCapacityMultiplier uint32 `yaml:"defaultCapacityMultiplier"` // multiplier of newly seen pools, 100 is 1x.
	MaxTotalEffectiveWeight   uint64 `yaml:"maxTotalEffectiveWeight"`   // ceiling checked when target weights increase.
}

// SetConfig sets the config.
// If the config is not set, the default values will be used.
// If the config is locked, will panic.
func SetConfig(cfg Config) {
	if locked {
		panic("config is locked, cannot be set")
	}

	if cfg.TrancheDuration != 0 {
		trancheDuration = cfg.TrancheDuration
	}

	if cfg.AllocationUnit != 0 {
		allocationUnit = cfg.AllocationUnit
	}

	if cfg.DefaultCapacityMultiplier != 0 {
		defaultCapacityMultiplier = cfg.DefaultCapacityMultiplier
	}

	if cfg.MaxTotalEffectiveWeight != 0 {
		maxTotalEffectiveWeight = cfg.MaxTotalEffectiveWeight
	}
}

// LockConfig locks the config, preventing any further changes.
func LockConfig() {
	locked = true
}

// GetConfig returns the config currently in effect.
func GetConfig() Config {
	return Config{
		TrancheDuration:           trancheDuration,
		AllocationUnit:            allocationUnit,
		DefaultCapacityMultiplier: defaultCapacityMultiplier,
		MaxTotalEffectiveWeight:   maxTotalEffectiveWeight,
	}
}
