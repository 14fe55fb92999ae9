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

package mailbox

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/phikal/issue2mbox/internal/msg"

	"github.com/emersion/go-maildir"
	"github.com/pkg/errors"
)

// maildirHandle delivers each message as its own file under
// <number>/.  Deliveries land in new/, never cur/, and no flags are
// set: exported messages are not drafts and have not been read.
type maildirHandle struct {
	dir maildir.Dir
}

func openMaildir(root string, number int, overwrite bool) (Handle, error) {
	path := filepath.Join(root, strconv.Itoa(number))
	if overwrite {
		if err := os.RemoveAll(path); err != nil {
			return nil, errors.Wrapf(err, "removing %s", path)
		}
	}
	d := maildir.Dir(path)
	if err := d.Init(); err != nil {
		return nil, errors.Wrapf(err, "initializing maildir %s", path)
	}
	return &maildirHandle{dir: d}, nil
}

func (h *maildirHandle) Append(m *msg.Message) error {
	del, err := maildir.NewDelivery(string(h.dir))
	if err != nil {
		return errors.Wrapf(err, "starting delivery of message %s", m.ID)
	}
	if err := m.WriteTo(del); err != nil {
		del.Abort()
		return err
	}
	return errors.Wrapf(del.Close(), "finishing delivery of message %s", m.ID)
}

func (h *maildirHandle) Close() error {
	return nil
}
