// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_Mode(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error("NewTheme(dark).IsDark = false")
	}
	if NewTheme("light").IsDark {
		t.Error("NewTheme(light).IsDark = true")
	}
}

func TestRenderStatus_Indicators(t *testing.T) {
	if got := RenderStatus(true, "connected"); !strings.Contains(got, StatusIndicators.Success) {
		t.Errorf("RenderStatus(true) = %q, missing success indicator", got)
	}
	if got := RenderStatus(false, "offline"); !strings.Contains(got, StatusIndicators.Error) {
		t.Errorf("RenderStatus(false) = %q, missing error indicator", got)
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme("dark")
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize: got %dx%d", theme.Width, theme.Height)
	}
}
