// This file is part of gbxfs.
//
// gbxfs is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gbxfs is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gbxfs.  If not, see <https://www.gnu.org/licenses/>.

package serial

import (
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/prefs"
)

// Config is the persisted port number and baud rate of the cartridge reader.
type Config struct {
	dsk *prefs.Disk

	Port prefs.Int
	Baud prefs.Int
}

// NewConfig is the preferred method of initialisation for the Config type.
// The values are loaded from the prefs file at the specified path. If the file
// does not exist it is created with the default values.
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	cfg.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, curated.Errorf("serial: config: %v", err)
	}

	err = cfg.dsk.Add("gbxcart.port", &cfg.Port)
	if err != nil {
		return nil, curated.Errorf("serial: config: %v", err)
	}
	err = cfg.dsk.Add("gbxcart.baud", &cfg.Baud)
	if err != nil {
		return nil, curated.Errorf("serial: config: %v", err)
	}

	cfg.SetDefaults()

	err = cfg.dsk.Load(true)
	if err != nil {
		return nil, curated.Errorf("serial: config: %v", err)
	}

	return cfg, nil
}

// SetDefaults sets the port and baud rate to their default values.
func (cfg *Config) SetDefaults() {
	// errors are impossible with these values
	_ = cfg.Port.Set(0)
	_ = cfg.Baud.Set(DefaultBaud)
}

// Save the current values to disk.
func (cfg *Config) Save() error {
	if cfg.dsk == nil {
		return nil
	}
	return cfg.dsk.Save()
}
