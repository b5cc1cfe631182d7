package encoding

import (
	"github.com/BurntSushi/toml"

	"github.com/treepatch/treepatch/pkg/logging"
)

// LoadAndUnmarshalTOML loads data from the specified path and decodes it into
// the specified structure.
func LoadAndUnmarshalTOML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return toml.Unmarshal(data, value)
	})
}

// MarshalAndSaveTOML marshals value as TOML and saves it atomically to path.
func MarshalAndSaveTOML(path string, logger *logging.Logger, value interface{}) error {
	return MarshalAndSave(path, logger, func() ([]byte, error) {
		return toml.Marshal(value)
	})
}
