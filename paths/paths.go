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
//
package paths

import (
	"os"
	"path/filepath"
)

// the base path for all resources. note that we don't use this value directly
// except in the getBasePath() function. that function should be used instead.
const baseResourcePath = ".gbxfs"

// ResourcePath returns the resource string (representing the resource to be
// loaded) prepended with operating system specific details. The directory
// part of the resource is created if it does not already exist.
//
// Both arguments can be empty.
func ResourcePath(subPth string, file string) (string, error) {
	base, err := getBasePath()
	if err != nil {
		return "", err
	}

	pth := filepath.Join(base, subPth)
	if _, err := os.Stat(pth); err != nil {
		if err := os.MkdirAll(pth, 0o700); err != nil {
			return "", err
		}
	}

	return filepath.Join(pth, file), nil
}

// getBasePath() returns baseResourcePath if it can be found in the current
// directory. Otherwise the path is placed in the user's config directory (see
// os.UserConfigDir() for details).
func getBasePath() (string, error) {
	if _, err := os.Stat(baseResourcePath); err == nil {
		return baseResourcePath, nil
	}

	cnf, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(cnf, baseResourcePath[1:]), nil
}
