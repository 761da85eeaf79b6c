package types

import (
	"fmt"
	"io/ioutil"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// AggregatorName is the service name the health endpoint must report.
const AggregatorName = "intmax-aggregator"

// CompatibleVersionPrefix gates the aggregator version this wallet speaks.
const CompatibleVersionPrefix = "v0.4"

// RollupConstants are the circuit size parameters of one deployment. They
// are fixed per aggregator and must match it exactly.
type RollupConstants struct {
	LogNTxs       int `yaml:"log_n_txs"`
	LogMaxNBlocks int `yaml:"log_max_n_blocks"`
	LogMaxUsers   int `yaml:"log_max_users"`
	NDiffs        int `yaml:"n_diffs"`
	NMerges       int `yaml:"n_merges"`
	NDeposits     int `yaml:"n_deposits"`
}

// NTxs is the number of transaction slots per block.
func (c RollupConstants) NTxs() int {
	return 1 << c.LogNTxs
}

// DefaultRollupConstants returns the parameters of the public testnet
// deployment.
func DefaultRollupConstants() RollupConstants {
	return RollupConstants{
		LogNTxs:       3,
		LogMaxNBlocks: 32,
		LogMaxUsers:   3,
		NDiffs:        16,
		NMerges:       16,
		NDeposits:     16,
	}
}

// LoadRollupConstants overlays the defaults with a YAML file, if it
// exists. A missing file is not an error.
func LoadRollupConstants(path string) (RollupConstants, error) {
	constants := DefaultRollupConstants()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return constants, nil
		}
		return constants, err
	}
	if err := yaml.Unmarshal(data, &constants); err != nil {
		return constants, fmt.Errorf("invalid constants file %s: %w", path, err)
	}
	return constants, nil
}
