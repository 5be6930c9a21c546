//go:build !windows

package engine

import "github.com/sirupsen/logrus"

// showErrorDialog has no modal dialog to show outside windows, so the message goes to the log.
func showErrorDialog(logger logrus.FieldLogger, title, message string) {
	logger.WithField("title", title).Error(message)
}
