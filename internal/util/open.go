// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenExternal opens a file path or URL in the platform's default handler.
// It does not wait for the handler to exit.
func OpenExternal(target string) error {
	cmd, err := openCommand(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func openCommand(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "windows":
		// The empty quoted string is the window title for start.
		return exec.Command("cmd", "/c", "start", `""`, target), nil
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
