package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/5w1tchy/course-library-api/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	std := logrus.StandardLogger()
	prevOut, prevFmt, prevLvl := std.Out, std.Formatter, std.Level
	t.Cleanup(func() {
		std.SetOutput(prevOut)
		std.SetFormatter(prevFmt)
		std.SetLevel(prevLvl)
	})

	entry, err := logging.Setup("debug", "json")
	require.NoError(t, err)
	var buf bytes.Buffer
	std.SetOutput(&buf)

	entry.WithField("req-id", "r1").Debug("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, logging.Service, line["service"])
	assert.Equal(t, "r1", line["req-id"])
	assert.Equal(t, "hello", line["msg"])
}

func TestSetup_Rejects(t *testing.T) {
	_, err := logging.Setup("loud", "text")
	assert.Error(t, err)
	_, err = logging.Setup("info", "xml")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, logging.Service, logging.FromContext(context.Background()).Data["service"])

	e := logrus.NewEntry(logrus.New()).WithField("req-id", "abc")
	ctx := logging.WithContext(context.Background(), e)
	assert.Same(t, e, logging.FromContext(ctx))
}
