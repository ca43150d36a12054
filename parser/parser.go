package parser

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// TextFromHTML 은 HTML 본문을 검색용 평문으로 바꾼다.
// readability 로 본문을 먼저 추출하고, 실패하거나 비어 있으면 전체 텍스트 노드를 모은다.
func TextFromHTML(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}
	if text := strings.TrimSpace(ExtractTextWithReadability(htmlStr)); text != "" {
		return text
	}
	return CollectText(htmlStr)
}

// ExtractTextWithReadability 는 readability 가 판단한 본문 텍스트만 돌려준다.
func ExtractTextWithReadability(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// CollectText 는 모든 텍스트 노드를 줄 단위로 이어 붙인다. (script/style 제외)
func CollectText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var lines []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return strings.Join(lines, "\n")
}
