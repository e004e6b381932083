// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	info := Info{
		Version:   "v1.2.3",
		GitCommit: "abc1234",
		BuildTime: "2026-01-30T12:00:00Z",
	}
	assert.Equal(t, "orgdesk/v1.2.3", info.UserAgent())
}

func TestUserAgentZeroValue(t *testing.T) {
	// Before ldflags injection everything is empty; the User-Agent
	// still identifies the application.
	var info Info
	assert.Equal(t, "orgdesk/dev", info.UserAgent())
}
