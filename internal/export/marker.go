// Copyright 2026 The issue2mbox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MarkerName is the sentinel file recording which repository a
// destination directory was populated from.  Its content is the raw
// --repo argument as given at first population time, nothing else,
// and it is never rewritten.
const MarkerName = ".issue2mbox"

func readMarker(dir string) (repo string, found bool, err error) {
	b, err := os.ReadFile(filepath.Join(dir, MarkerName))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading marker in %s", dir)
	}
	return string(b), true, nil
}

func writeMarker(dir, repo string) error {
	path := filepath.Join(dir, MarkerName)
	if err := os.WriteFile(path, []byte(repo), markerFileMode); err != nil {
		return errors.Wrapf(err, "writing marker %s", path)
	}
	return nil
}
