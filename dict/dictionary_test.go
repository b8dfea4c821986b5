// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := []Entry{
		{Term: "run", Info: TermInfo{DocFreq: 3, PostingsFileID: 0, ByteOffset: 0}},
		{Term: "runner", Info: TermInfo{DocFreq: 1, PostingsFileID: 0, ByteOffset: 40}},
		{Term: "running", Info: TermInfo{DocFreq: 2, PostingsFileID: 0, ByteOffset: 90}},
		{Term: "runs", Info: TermInfo{DocFreq: 5, PostingsFileID: 1, ByteOffset: 10}},
	}

	strStream, tableStream := Encode(entries)
	got, err := Decode(strStream, tableStream)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestEncodeDecodeEmpty(t *testing.T) {
	strStream, tableStream := Encode(nil)
	got, err := Decode(strStream, tableStream)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCommonPrefixBytesUnicode(t *testing.T) {
	require.Equal(t, 0, commonPrefixBytes("", "café"))
	require.Equal(t, len("café"), commonPrefixBytes("café", "café"))
	require.Equal(t, len("caf"), commonPrefixBytes("café", "cafx"))
}
