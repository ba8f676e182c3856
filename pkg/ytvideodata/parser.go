package ytvideodata

import (
	"fmt"
	"net/http"

	"github.com/sosodev/duration"
	"golang.org/x/net/html"
)

// pageData holds what the watch page markup yields: the document title and
// the itemprop microdata YouTube embeds for crawlers.
type pageData struct {
	title    string
	author   string
	duration int
}

func getFromPage(videoId string) (*VideoData, error) {
	page, err := scrapeWatchPage(videoId)
	if err != nil {
		return nil, err
	}

	return &VideoData{
		VideoId:      videoId,
		Title:        page.title,
		AuthorName:   page.author,
		ThumbnailUrl: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
		Duration:     page.duration,
	}, nil
}

func getDurationFromPage(videoId string) (int, error) {
	page, err := scrapeWatchPage(videoId)
	if err != nil {
		return 0, err
	}

	return page.duration, nil
}

func scrapeWatchPage(videoId string) (*pageData, error) {
	resp, err := http.Get("https://youtu.be/" + videoId)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var page pageData
	collect(doc, &page)

	return &page, nil
}

// collect walks the document once, keeping the first title element, the
// <link itemprop="name"> channel name and the <meta itemprop="duration">
// ISO 8601 value.
func collect(n *html.Node, page *pageData) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if page.title == "" && n.FirstChild != nil {
				page.title = n.FirstChild.Data
			}
		case "link":
			if page.author == "" && attrVal(n, "itemprop") == "name" {
				page.author = attrVal(n, "content")
			}
		case "meta":
			if page.duration == 0 && attrVal(n, "itemprop") == "duration" {
				page.duration = parseISODuration(attrVal(n, "content"))
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, page)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}

	return ""
}

func parseISODuration(iso string) int {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0
	}

	return int(d.Seconds) + int(d.Minutes)*60 + int(d.Hours)*3600
}
