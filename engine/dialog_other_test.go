//go:build !windows

package engine

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogReporterLogsWithoutDialog(t *testing.T) {
	logger, hook := test.NewNullLogger()

	DialogReporter(logger)(ErrorTitle, "load direct3d11: not supported")

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "load direct3d11: not supported", entry.Message)
	assert.Equal(t, ErrorTitle, entry.Data["title"])
}
