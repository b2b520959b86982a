// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/clinsight/internal/logger"
)

// Desktop shows a desktop notification. Long batches run unattended, so a
// completion ping is worth having; failures to notify are only logged.
func Desktop(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		logger.Debugf("desktop notification failed: %v", err)
	}
}
