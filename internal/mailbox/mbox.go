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
	"fmt"
	"os"
	"path/filepath"

	"github.com/phikal/issue2mbox/internal/msg"

	"github.com/emersion/go-mbox"
	"github.com/pkg/errors"
)

// mboxHandle appends to <number>.mbox.  The file is opened in append
// mode so that resumed runs extend an existing container; mbox
// From-line framing is self-delimiting, so a fresh Writer over an
// appended file stays well-formed.
type mboxHandle struct {
	f *os.File
	w *mbox.Writer
}

func openMbox(dir string, number int, overwrite bool) (Handle, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.mbox", number))
	if overwrite {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "removing %s", path)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, messageFileMode)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return &mboxHandle{f: f, w: mbox.NewWriter(f)}, nil
}

func (h *mboxHandle) Append(m *msg.Message) error {
	mw, err := h.w.CreateMessage(m.From.Address, m.Date)
	if err != nil {
		return errors.Wrapf(err, "framing message %s", m.ID)
	}
	return m.WriteTo(mw)
}

func (h *mboxHandle) Close() error {
	err := h.w.Close()
	if cerr := h.f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "closing mbox")
}
