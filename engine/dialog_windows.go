//go:build windows

package engine

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// showErrorDialog blocks on a modal message box with an error icon.
func showErrorDialog(logger logrus.FieldLogger, title, message string) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		logger.WithError(err).Error(message)
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		logger.WithError(err).Error(message)
		return
	}
	if _, err := windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONHAND); err != nil {
		logger.WithError(err).Error(message)
	}
}
