// Copyright 2026 EngFlow Inc. All rights reserved.
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

package logging_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/EngFlow/ccexpand/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, logging.ColorEnabled(logging.ColorAlways, &buf))
	assert.False(t, logging.ColorEnabled(logging.ColorNever, os.Stderr))
	assert.False(t, logging.ColorEnabled(logging.ColorAuto, &buf), "buffers are not terminals")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, logging.ColorEnabled(logging.ColorAuto, os.Stderr))
	assert.True(t, logging.ColorEnabled(logging.ColorAlways, os.Stderr))
}

func TestSetColor(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	logging.SetColor(logger, false)
	logger.Warn("plain", logging.FieldPath, "main.c")
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "plain")
}
