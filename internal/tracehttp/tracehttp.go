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

package tracehttp

import (
	"fmt"
	"net/http"
	"net/http/httputil"
)

// traceTransport is an http.RoundTripper that prints each request and
// response to stdout while delegating the real work to another
// http.RoundTripper.  The Authorization header is redacted so a trace
// never leaks the tracker token.
type traceTransport struct {
	delegate http.RoundTripper
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	dump := req.Clone(req.Context())
	if dump.Header.Get("Authorization") != "" {
		dump.Header.Set("Authorization", "REDACTED")
	}
	if out, err := httputil.DumpRequestOut(dump, false); err == nil {
		fmt.Println(string(out))
	}
	resp, err := t.delegate.RoundTrip(req)
	if err == nil {
		if out, dumpErr := httputil.DumpResponse(resp, false); dumpErr == nil {
			fmt.Println(string(out))
		}
	}
	return resp, err
}

func Wrap(d http.RoundTripper) http.RoundTripper {
	return &traceTransport{d}
}

// Inject a traceTransport into http.DefaultTransport.
func WrapDefaultTransport() {
	http.DefaultTransport = Wrap(http.DefaultTransport)
}
