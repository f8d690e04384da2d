// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when no encoding name is configured
const DefaultEncoding = "utf-8"

// 🔤 Codec converts between raw file bytes and UTF-8 text
type Codec struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// 🏭 LookupCodec resolves an encoding name using the WHATWG label index
func LookupCodec(name string) (*Codec, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return &Codec{
		name: canonical,
		enc:  enc,
		utf8: canonical == DefaultEncoding,
	}, nil
}

// Name returns the canonical encoding name
func (c *Codec) Name() string {
	return c.name
}

// 📖 Decode converts raw bytes into text, failing on bytes that are not
// valid in the encoding instead of substituting replacement characters.
func (c *Codec) Decode(raw []byte) (string, error) {
	if c.utf8 {
		if !utf8.Valid(raw) {
			return "", errors.Errorf("invalid %s byte sequence", c.name)
		}
		return string(raw), nil
	}

	decoded, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Errorf("decoding %s: %w", c.name, err)
	}

	// decoders substitute U+FFFD for invalid input, catch that with a round trip
	again, err := c.enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(again, raw) {
		return "", errors.Errorf("invalid %s byte sequence", c.name)
	}

	return string(decoded), nil
}

// 📝 Encode converts text into raw bytes
func (c *Codec) Encode(s string) ([]byte, error) {
	if c.utf8 {
		return []byte(s), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Errorf("encoding %s: %w", c.name, err)
	}
	return out, nil
}
