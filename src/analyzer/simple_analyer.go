// 提取body中的可见文本，以及a标签的href（转换为绝对url）
// 文本提取是有损的：不保留标题、表格等结构
package analyzer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/andrewyi/domaincrawler/src/entity"
	"github.com/andrewyi/domaincrawler/src/enum"
	"github.com/andrewyi/domaincrawler/src/util"
)

// 这些元素中的文本不可见
var invisibleElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

type SimpleAnalyzer struct{}

func NewSimpleAnalyzer() Analyzer {
	return &SimpleAnalyzer{}
}

func (a *SimpleAnalyzer) Analyze(page entity.PageInfo) entity.ParsedPageInfo {
	var parsedPageInfo = entity.ParsedPageInfo{
		URL:      page.URL,
		State:    page.State,
		FailKind: page.FailKind,
		Remark:   page.Remark,
	}

	if page.State != enum.PageStateSuccess {
		return parsedPageInfo
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Content))
	if err != nil {
		parsedPageInfo.State = enum.PageStateFail
		parsedPageInfo.FailKind = enum.FailParse
		parsedPageInfo.Remark = err.Error()
		return parsedPageInfo
	}

	base := page.FinalURL
	if base == "" {
		base = page.URL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		parsedPageInfo.State = enum.PageStateFail
		parsedPageInfo.FailKind = enum.FailParse
		parsedPageInfo.Remark = err.Error()
		return parsedPageInfo
	}

	parsedPageInfo.Text = ExtractText(doc)
	parsedPageInfo.SubURLs = extractLinks(doc, baseURL)
	return parsedPageInfo
}

// 收集body下所有可见文本节点，空白折叠为单个空格
func ExtractText(doc *goquery.Document) string {
	var words []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if _, ok := invisibleElements[n.Data]; ok {
				return
			}
		case html.TextNode:
			words = append(words, strings.Fields(n.Data)...)
			return
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}
	return strings.Join(words, " ")
}

// 只保留http/https链接，去掉hash tag，按出现顺序去重
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var (
		seen  = make(map[string]struct{})
		links []string
	)

	doc.Find("a[href]").Each(func(index int, element *goquery.Selection) {
		href, _ := element.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		u, err := util.CanonicalURL(abs.String())
		if err != nil {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		links = append(links, u)
	})

	return links
}
