//go:build !windows

package main

import (
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	n := screenshot.NumActiveDisplays()
	zap.S().Debugf("MONITOR: Detected %d displays", n)
	for i := 0; i < n; i++ {
		zap.S().Debugf("MONITOR: Display %d - %v", i, screenshot.GetDisplayBounds(i))
	}
}
