package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Status("✅", "done")
	assert.Equal(t, "✅ done\n", buf.String())
}

func TestStatusWithoutIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Status("", "done")
	assert.Equal(t, "   done\n", buf.String())
}

func TestSuccessfFormats(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Successf("%d chunks stored", 5)
	assert.Equal(t, "✅ 5 chunks stored\n", buf.String())
}

func TestErrorfFormats(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Errorf("failed: %s", "boom")
	assert.Equal(t, "❌ failed: boom\n", buf.String())
}

func TestCodeIndentsEachLine(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Code("line1\nline2")
	assert.Equal(t, "\n  line1\n  line2\n\n", buf.String())
}
