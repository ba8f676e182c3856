package ytvideodata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/net/html"
)

const watchPageSnippet = `<!DOCTYPE html>
<html>
<head>
<title>Never Gonna Give You Up - YouTube</title>
<link itemprop="url" href="http://www.youtube.com/@RickAstley">
<link itemprop="name" content="Rick Astley">
<meta itemprop="duration" content="PT3M32S">
</head>
<body><div id="player"></div></body>
</html>`

func TestCollect(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(watchPageSnippet))
	require.NoError(t, err)

	var page pageData
	collect(doc, &page)

	assert.Equal(t, "Never Gonna Give You Up - YouTube", page.title)
	assert.Equal(t, "Rick Astley", page.author)
	assert.Equal(t, 212, page.duration)
}

func TestCollectMissingMicrodata(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<html><head><title>t</title></head><body></body></html>"))
	require.NoError(t, err)

	var page pageData
	collect(doc, &page)

	assert.Equal(t, "t", page.title)
	assert.Empty(t, page.author)
	assert.Zero(t, page.duration)
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 212, parseISODuration("PT3M32S"))
	assert.Equal(t, 3600, parseISODuration("PT1H"))
	assert.Zero(t, parseISODuration("garbage"))
}
